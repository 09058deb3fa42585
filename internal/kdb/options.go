// Copyright IBM Corp. 2025, 2026
// SPDX-License-Identifier: BUSL-1.1

package kdb

import (
	"github.com/hashicorp/xrealmauthz/internal/db"
)

type options struct {
	withUrl    string
	withDbType db.DbType
	withDebug  bool
}

// Option is a function that takes in an options struct and sets values
// or returns an error
type Option func(*options) error

func getDefaultOptions() options {
	return options{
		withDbType: db.Sqlite,
	}
}

func getOpts(opt ...Option) (options, error) {
	opts := getDefaultOptions()

	for _, o := range opt {
		if err := o(&opts); err != nil {
			return options{}, err
		}
	}
	return opts, nil
}

// WithUrl provides an optional url for the store's connection.
func WithUrl(url string) Option {
	return func(o *options) error {
		o.withUrl = url
		return nil
	}
}

// WithDebug provides an optional debug flag for the store's connection.
func WithDebug(debug bool) Option {
	return func(o *options) error {
		o.withDebug = debug
		return nil
	}
}
