/*
	Copyright 2015 Franc[e]sco (lolisamurai@tfwno.gf)
	This file is part of go-hachi.
	go-hachi is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.
	go-hachi is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.
	You should have received a copy of the GNU General Public License
	along with go-hachi. If not, see <http://www.gnu.org/licenses/>.
*/

// Package cli handles the command line interface shared by the front-ends.
package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Options holds the command line options of a front-end.
type Options struct {
	Input string
	Wav   string

	Seed       int64
	Clock      int
	Cycles     int
	LowKey     bool
	LinearWrap bool
	ShiftQuirk bool
	IndexQuirk bool
	Disasm     bool

	Debug bool
	Quiet bool
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	name  string
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	if e.msg == "" {
		return "missing program file"
	}
	return e.msg
}

// ShowUsage prints the usage and the flag defaults to w.
func (e *UsageError) ShowUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "usage: %s [options] <program file>\n\n", e.name)
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	_, _ = fmt.Fprintln(w)
}

// ParseFlags parses the arguments (without the program name) of the
// front-end called name.
func ParseFlags(name string, args []string) (Options, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts Options
	flags.IntVar(&opts.Clock, "clock", hachi.DefaultSettings.ClockRate, "instructions executed per second")
	flags.Int64Var(&opts.Seed, "seed", 0, "seed of the random number generator, 0 seeds from the clock")
	flags.IntVar(&opts.Cycles, "cycles", 0, "run this many instructions as fast as possible and exit")
	flags.BoolVar(&opts.LowKey, "lowkey", false, "LD VX,K picks the lowest key when several are held")
	flags.BoolVar(&opts.LinearWrap, "linearwrap", false, "sprites running off the right edge continue on the next row")
	flags.BoolVar(&opts.ShiftQuirk, "shiftquirk", false, "SHR/SHL shift VY into VX")
	flags.BoolVar(&opts.IndexQuirk, "indexquirk", false, "LD [I],VX and LD VX,[I] leave I untouched")
	flags.StringVar(&opts.Wav, "wav", "", "record the beeps into this WAV file")
	flags.BoolVar(&opts.Disasm, "dis", false, "print a disassembly of the program on exit")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	err := flags.Parse(args)
	if err != nil {
		return opts, &UsageError{name: name, flags: flags, msg: err.Error()}
	}
	rest := flags.Args()
	if len(rest) == 0 {
		return opts, &UsageError{name: name, flags: flags}
	}
	if len(rest) > 1 {
		return opts, &UsageError{name: name, flags: flags,
			msg: fmt.Sprintf("unexpected argument %s after the program file, "+
				"options must come first", rest[1])}
	}
	opts.Input = rest[0]

	if _, err := opts.Settings(); err != nil {
		return opts, err
	}
	return opts, nil
}

// Settings builds the interpreter settings the options ask for.
func (o Options) Settings() (*hachi.Settings, error) {
	s := *hachi.DefaultSettings
	s.Seed = o.Seed
	s.ClockRate = o.Clock
	s.ShiftQuirk = o.ShiftQuirk
	s.IndexQuirk = o.IndexQuirk
	if o.LowKey {
		s.KeyPriority = hachi.LowestKey
	}
	if o.LinearWrap {
		s.Wrap = hachi.WrapLinear
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return &s, nil
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// PrintBanner logs the name and version of the front-end.
func PrintBanner(logger *log.Logger, name string, quiet bool, version, commit, date string) {
	if quiet {
		return
	}
	logger.Info(name, log.String("version", buildinfo.Version(version, commit, date)))
}
