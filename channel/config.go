/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package channel

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	libctx "github.com/nabbar/nexio/context"
	"github.com/nabbar/nexio/errors"
	"github.com/nabbar/nexio/outbound"
)

// configAliases redirects deprecated/renamed option keys to their
// current name before decoding, so existing call sites using an old key
// keep working.
var configAliases = map[string]string{
	"write-buffer-high-water-mark": "high-water-mark",
	"write-buffer-low-water-mark":  "low-water-mark",
	"recv-buffer-size":             "initial-recv-buffer",
	"tcp-nodelay":                  "tcp.nodelay",
	"so-reuseaddr":                 "so.reuseaddr",
	"so-linger":                    "so.linger",
}

// Options is the typed, validated view of a channel's tunables; decoded
// from a generic map[string]any via mapstructure and checked with
// validator struct tags before it takes effect.
type Options struct {
	InitialRecvBuffer int  `mapstructure:"initial-recv-buffer" validate:"gte=64"`
	MaxRecvBuffer     int  `mapstructure:"max-recv-buffer" validate:"gtefield=InitialRecvBuffer"`
	HighWaterMark     int64 `mapstructure:"high-water-mark" validate:"gt=0"`
	LowWaterMark      int64 `mapstructure:"low-water-mark" validate:"gte=0,ltfield=HighWaterMark"`
	WriteSpinCount    int  `mapstructure:"write-spin-count" validate:"gt=0"`
	AutoRead          bool `mapstructure:"auto-read"`
	AllowHalfClose    bool `mapstructure:"allow-half-close"`
	SoReuseAddr       bool `mapstructure:"so.reuseaddr"`
	TCPNoDelay        bool `mapstructure:"tcp.nodelay"`
	SoLinger          int  `mapstructure:"so.linger" validate:"gte=-1"`
}

// DefaultOptions mirrors the defaults spelled out across 4.D/4.F/9.
func DefaultOptions() Options {
	return Options{
		InitialRecvBuffer: 2048,
		MaxRecvBuffer:     65536,
		HighWaterMark:     outbound.DefaultHighWaterMark,
		LowWaterMark:      outbound.DefaultLowWaterMark,
		WriteSpinCount:    16,
		AutoRead:          true,
		AllowHalfClose:    false,
		SoReuseAddr:       true,
		TCPNoDelay:        true,
		SoLinger:          -1,
	}
}

// Config is a channel's configuration: a validated Options snapshot plus
// an open-ended attribute map for handler-private state (AttributeKey
// idiom), built on the teacher's generic Config[T] map.
type Config struct {
	mu   sync.RWMutex
	opt  Options
	attr libctx.Config[string]
	val  *validator.Validate
}

// decodeOptions applies key redirection then decodes raw over
// DefaultOptions(); unset keys keep their default value.
func decodeOptions(raw map[string]interface{}) (Options, errors.Error) {
	opt := DefaultOptions()

	if len(raw) == 0 {
		return opt, nil
	}

	red := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if alias, ok := configAliases[k]; ok {
			k = alias
		}
		red[k] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opt,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return opt, ErrorConfigValidation.Error(err)
	}
	if err = dec.Decode(red); err != nil {
		return opt, ErrorConfigValidation.Error(err)
	}

	return opt, nil
}

// NewConfig builds a Config from raw, applying key redirection then
// decoding and validating against Options; unset keys keep their
// DefaultOptions() value.
func NewConfig(raw map[string]interface{}) (*Config, errors.Error) {
	opt, derr := decodeOptions(raw)
	if derr != nil {
		return nil, derr
	}

	v := validator.New()
	if err := v.Struct(opt); err != nil {
		return nil, ErrorConfigValidation.Error(err)
	}

	return &Config{
		opt:  opt,
		attr: libctx.New[string](context.Background()),
		val:  v,
	}, nil
}

// WatchFile loads path (any format viper supports: YAML, JSON, TOML, ...)
// as the Config's initial Options, then watches it with fsnotify so
// subsequent edits hot-reload watermark/timeout tuning through
// SetOptions. The returned stop func releases the watcher; call it once
// the Config (or its owning Channel) is no longer needed.
func (c *Config) WatchFile(path string) (stop func() error, ferr errors.Error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	if err := vp.ReadInConfig(); err != nil {
		return nil, ErrorConfigValidation.Error(err)
	}

	apply := func() errors.Error {
		opt, derr := decodeOptions(vp.AllSettings())
		if derr != nil {
			return derr
		}
		return c.SetOptions(opt)
	}
	if aerr := apply(); aerr != nil {
		return nil, aerr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ErrorConfigValidation.Error(err)
	}
	if err = watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, ErrorConfigValidation.Error(err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if rerr := vp.ReadInConfig(); rerr == nil {
						_ = apply()
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() error {
		close(done)
		return watcher.Close()
	}, nil
}

func (c *Config) Options() Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opt
}

// SetOptions replaces the Options snapshot after validating it, e.g.
// when a viper-backed source hot-reloads watermark/timeout tuning.
func (c *Config) SetOptions(opt Options) errors.Error {
	if err := c.val.Struct(opt); err != nil {
		return ErrorConfigValidation.Error(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.opt = opt
	return nil
}

// Attr exposes the per-channel attribute map (AttributeKey<->value)
// handlers use to stash private state alongside the channel.
func (c *Config) Attr() libctx.Config[string] {
	return c.attr
}
