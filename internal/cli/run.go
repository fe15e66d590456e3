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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Francesco149/go-hachi/v2/drivers/wavrec"
	"github.com/Francesco149/go-hachi/v2/hachi"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

// A drawer is a driver that can render the screen on demand, used to show
// the final screen of a headless run.
type drawer interface {
	Draw(c *hachi.Chip8) error
}

// Main is the entry point of every front-end executable: it parses the
// arguments, runs the program on the driver registered as driverName and
// exits with a non-zero status on failure.
func Main(name, driverName, version, commit, date string) {
	ctx := app.Context()

	opts, err := ParseFlags(name, os.Args[1:])
	if err != nil {
		logger := CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			PrintBanner(logger, name, false, version, commit, date)
			if usageErr.msg != "" {
				logger.Error(usageErr.Error())
			}
			usageErr.ShowUsage(os.Stdout)
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}

	logger := CreateLogger(opts.Debug, opts.Quiet)
	PrintBanner(logger, name, opts.Quiet, version, commit, date)

	if err := Run(ctx, logger, opts, driverName, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Execution failed", log.Err(err))
		os.Exit(1)
	}
}

// Run loads opts.Input into a new interpreter and runs it on the driver
// registered as driverName until the driver quits, ctx is done or a fatal
// error occurs. Listings requested with -dis are written to out.
func Run(ctx context.Context, logger *log.Logger, opts Options, driverName string,
	out io.Writer) (rerr error) {

	settings, err := opts.Settings()
	if err != nil {
		return err
	}
	c, err := hachi.New(settings, logger)
	if err != nil {
		return fmt.Errorf("creating interpreter: %w", err)
	}
	size, err := c.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	// kept aside, the program may overwrite itself
	program := make([]byte, size)
	copy(program, c.Memory[hachi.ProgramStart:])

	d, err := hachi.NewDriver(driverName)
	if err != nil {
		return err
	}
	if opts.Wav != "" {
		d = wavrec.New(d, opts.Wav)
	}

	r, err := hachi.NewRunner(c, d, logger)
	if err != nil {
		_ = d.Close()
		return fmt.Errorf("initializing driver %s: %w", driverName, err)
	}
	defer func() {
		if err := r.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("closing driver %s: %w", driverName, err)
		}
	}()

	if opts.Cycles > 0 {
		err = runCycles(r, opts.Cycles)
		if dr, ok := d.(drawer); ok && err == nil {
			err = dr.Draw(c)
		}
	} else {
		err = r.Run(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Debug("Machine state", log.String("state", c.String()))
		return err
	}
	logger.Debug("Stopped", log.Int("cycles", int(r.Cycles())))

	if opts.Disasm {
		if werr := PrintDisassembly(out, hachi.DisassembleSimple(program)); werr != nil {
			return werr
		}
	}
	return err
}

// runCycles runs n cycles back to back.
func runCycles(r *hachi.Runner, n int) error {
	for i := 0; i < n; i++ {
		if err := r.Tick(); err != nil {
			if errors.Is(err, hachi.ErrQuit) {
				return nil
			}
			return err
		}
	}
	return nil
}

// PrintDisassembly writes a table of lines to w: address, raw opcode,
// pseudo-asm, printable ascii and description.
func PrintDisassembly(w io.Writer, lines []hachi.Line) error {
	tw := new(tabwriter.Writer)
	tw.Init(w, 8, 8, 0, '\t', 0)
	_, _ = fmt.Fprintln(tw, "addr\topcode\tpseudo-code\tascii\tdescription\t")

	for _, l := range lines {
		asciitext := ""
		if ascii := l.ASCII(); len(ascii) != 0 {
			asciitext = fmt.Sprintf("`%s`", ascii)
		}

		opcode := fmt.Sprintf("%04X", l.Instruction.Opcode)
		if l.Size() == 1 {
			opcode = fmt.Sprintf("%02X", l.Bytes[0])
		}

		_, _ = fmt.Fprintf(tw, "%04X\t%s\t%v\t%s\t%s\n",
			l.Address, opcode, l, asciitext, l.Description())
	}

	return tw.Flush()
}
