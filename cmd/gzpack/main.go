package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/flatepack/pack"
	"github.com/flatepack/pack/config"
	"github.com/flatepack/pack/gzip"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: ", err)
		os.Exit(1)
	}

	logrus.SetLevel(cfg.LogLevel)
	if cfg.CLI.Debug {
		logrus.Debug("debug mode enabled")
	}

	displayConfig(cfg)

	if err := run(cfg, os.Stdin, os.Stdout); err != nil {
		logrus.Errorf("gzpack: %s", err)
		os.Exit(1)
	}
}

func displayConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	logrus.Debug("gzpack settings:")
	logrus.Debug("  [CLI]")
	logrus.Debugf("  version: %s", config.VERSION)
	logrus.Debugf("  file: %s", cfg.CLI.File)
	logrus.Debugf("  decompress: %v", cfg.CLI.Decompress)
	logrus.Debugf("  stdout: %v", cfg.CLI.Stdout)
	logrus.Debugf("  keep: %v", cfg.CLI.Keep)
	logrus.Debugf("  trace: %v", cfg.CLI.Trace)
	logrus.Debugf("  config file: %s", cfg.CLI.ConfigFile)
	logrus.Debug("")
	logrus.Debug("  [CONFIG]")
	logrus.Debugf("  log_level: %s", cfg.LogLevel)
	logrus.Debugf("  deflate.method: %s", cfg.Method)
	logrus.Debugf("  gzip.store_name: %v", cfg.StoreName())
	logrus.Debugf("  gzip.os: %d", cfg.OS())
	logrus.Debugf("  gzip.comment: %q", cfg.TOML.Gzip.Comment)
}

func run(cfg *config.Config, stdin io.Reader, stdout io.Writer) error {
	name := cfg.CLI.File
	log := logrus.WithField("file", name)

	in := stdin
	var info os.FileInfo
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return errors.Wrap(err, "unable to open input")
		}
		defer f.Close()
		if info, err = f.Stat(); err != nil {
			return errors.Wrap(err, "unable to stat input")
		}
		in = f
	}

	switch {
	case cfg.CLI.Trace:
		return trace(in, stdout, new(pack.Matcher))
	case cfg.CLI.Decompress:
		return decompress(cfg, log, name, in, stdout)
	default:
		return compress(cfg, log, name, info, in, stdout)
	}
}

func compress(cfg *config.Config, log *logrus.Entry, name string, info os.FileInfo, in io.Reader, stdout io.Writer) error {
	target := compressTarget(name, cfg.CLI.Stdout)
	out, closeOut, err := openTarget(target, stdout)
	if err != nil {
		return err
	}

	gw, err := gzip.NewWriter(out, cfg.Method)
	if err != nil {
		closeOut(false)
		return err
	}
	gw.Logger = log
	gw.OS = cfg.OS()
	gw.Comment = cfg.TOML.Gzip.Comment
	if info != nil {
		gw.ModTime = info.ModTime()
		if cfg.StoreName() {
			gw.Name = filepath.Base(name)
		}
	}

	if _, err := io.Copy(gw, in); err != nil {
		closeOut(false)
		return errors.Wrap(err, "compression failed")
	}
	if err := gw.Close(); err != nil {
		closeOut(false)
		return errors.Wrap(err, "compression failed")
	}
	if err := closeOut(true); err != nil {
		return err
	}

	sum := gw.Summary()
	log.WithFields(logrus.Fields{
		"target": displayName(target),
		"bytes":  sum.Count,
		"method": cfg.Method,
	}).Info("compressed")

	return removeInput(cfg, name, target)
}

func decompress(cfg *config.Config, log *logrus.Entry, name string, in io.Reader, stdout io.Writer) error {
	gr, err := gzip.NewReader(in)
	if err != nil {
		return errors.Wrap(err, "unable to read gzip header")
	}
	gr.Logger = log

	target, err := decompressTarget(name, gr.Name, cfg.CLI.Stdout)
	if err != nil {
		return err
	}
	out, closeOut, err := openTarget(target, stdout)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, gr); err != nil {
		closeOut(false)
		return errors.Wrap(err, "decompression failed")
	}
	if err := closeOut(true); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"target": displayName(target),
		"bytes":  gr.Summary().Count,
	}).Info("decompressed")

	return removeInput(cfg, name, target)
}

// openTarget opens path for writing, or returns stdout for "". The returned
// function finishes the output; when ok is false a partly written file is
// removed.
func openTarget(path string, stdout io.Writer) (io.Writer, func(ok bool) error, error) {
	if path == "" {
		bw := bufio.NewWriter(stdout)
		return bw, func(ok bool) error {
			if err := bw.Flush(); err != nil {
				return errors.Wrap(err, "unable to write output")
			}
			return nil
		}, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to create output")
	}
	bw := bufio.NewWriter(f)
	return bw, func(ok bool) error {
		if ok {
			if err := bw.Flush(); err != nil {
				f.Close()
				os.Remove(path)
				return errors.Wrap(err, "unable to write output")
			}
			return errors.Wrap(f.Close(), "unable to close output")
		}
		f.Close()
		os.Remove(path)
		return nil
	}, nil
}

func removeInput(cfg *config.Config, name, target string) error {
	if name == "-" || target == "" || cfg.CLI.Keep {
		return nil
	}
	return errors.Wrap(os.Remove(name), "unable to remove input")
}

func displayName(target string) string {
	if target == "" {
		return "(stdout)"
	}
	return target
}

// trace writes the LZ77 element stream of in as text. Each chunk read is
// matched on its own, though matches may reach back into earlier chunks.
func trace(in io.Reader, stdout io.Writer, mf pack.MatchFinder) error {
	var enc pack.TextEncoder
	w := bufio.NewWriter(stdout)

	buf := make([]byte, 1<<16)
	var elems []pack.Element
	var text []byte
	for {
		n, err := in.Read(buf)
		if n > 0 {
			elems = mf.FindMatches(elems[:0], buf[:n])
			text = enc.Encode(text[:0], elems)
			if _, err := w.Write(text); err != nil {
				return errors.Wrap(err, "unable to write trace")
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "unable to read input")
		}
	}
	return errors.Wrap(w.Flush(), "unable to write trace")
}
