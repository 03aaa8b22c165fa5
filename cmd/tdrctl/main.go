package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"example.com/timexdr/internal/archive"
	"example.com/timexdr/internal/common"
	"example.com/timexdr/internal/config"
	"example.com/timexdr/internal/eeprom"
	"example.com/timexdr/internal/manifest"
	"example.com/timexdr/internal/report"
	"example.com/timexdr/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "decode":
		err = runDecode(args, os.Stdout)
	case "dump":
		err = runDump(args, os.Stdout)
	case "archive":
		err = runArchive(args, os.Stdout)
	case "report":
		err = runReport(args, os.Stdout)
	case "manifest":
		err = runManifest(args, os.Stdout)
	case "fingerprint":
		err = runFingerprint(args, os.Stdout)
	default:
		usage()
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf(`tdrctl %s (built %s) <command> [options]

Commands:
  decode      --in <dump[,dump...]> [--config <file.yaml>] [--units metric|imperial | --miles] [--days N]
              [--file] [--out-dir <dir>] [--format text|ndjson|fit] [--on-error abort|skip] [--dedup]
              [--tz <zone>] [--archive-dir <dir>] [--summary <summary.json>] [--pdf <summary.pdf>] [--lang en|de] [-v N]
  dump        --in <dump>
  archive     --in <dump> --out <path> [--codec zstd|s2|lz4|none]
  report      --summary <summary.json> --pdf <summary.pdf> [--lang en|de]
  manifest    --inputs <comma-separated> --out <manifest.json> | --verify <manifest.json>
  fingerprint --in <dump[,dump...]>
`, version, buildDate)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadDump reads a raw or archived dump and records its size.
func loadDump(path string, metrics *common.Metrics) ([]byte, error) {
	raw, err := archive.Load(path)
	if err != nil {
		return nil, err
	}
	metrics.AddImage(eeprom.PageCount(len(raw), eeprom.PageSize), len(raw))
	if len(raw)%eeprom.PageSize != 0 {
		common.Logf("%s: %d bytes is not a whole number of %d-byte pages", path, len(raw), eeprom.PageSize)
	}
	return raw, nil
}

func runDecode(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	in := fs.String("in", "", "comma-separated dump files (.zst/.s2/.lz4 are decompressed)")
	cfgPath := fs.String("config", "", "YAML configuration file")
	units := fs.String("units", "", "metric or imperial")
	miles := fs.Bool("miles", false, "shorthand for --units imperial")
	days := fs.Int("days", -1, "only sessions since local midnight N days ago (-1 = all)")
	perFile := fs.Bool("file", false, "write each session to YYYYMMDD_HHMMSS-HHMMSS.{hrm,gps}")
	outDir := fs.String("out-dir", "", "directory for per-session and FIT files")
	format := fs.String("format", "", "text, ndjson or fit")
	onError := fs.String("on-error", "", "abort or skip a session that fails to decode")
	dedup := fs.Bool("dedup", false, "skip sessions already decoded from an earlier dump")
	tz := fs.String("tz", "", "time zone of the recorder clock")
	archiveDir := fs.String("archive-dir", "", "keep a compressed copy of every dump here")
	summaryPath := fs.String("summary", "", "write a JSON summary")
	pdfPath := fs.String("pdf", "", "write a PDF summary")
	lang := fs.String("lang", "", "PDF summary language")
	verbosity := fs.Int("v", 0, "verbosity")
	metricsFlag := fs.Bool("metrics", false, "print decode metrics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	inputs := splitList(*in)
	if len(inputs) == 0 {
		return errors.New("required: --in")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "units":
			cfg.Units = *units
		case "miles":
			if *miles {
				cfg.Units = "imperial"
			}
		case "days":
			cfg.SinceDays = *days
		case "file":
			cfg.Output.PerSessionFiles = *perFile
		case "out-dir":
			cfg.Output.Dir = *outDir
		case "format":
			cfg.Output.Format = *format
		case "on-error":
			cfg.OnSessionError = *onError
		case "dedup":
			cfg.Dedup = *dedup
		case "tz":
			cfg.Timezone = *tz
		case "archive-dir":
			cfg.Archive.Dir = *archiveDir
		case "lang":
			cfg.Report.Lang = *lang
		case "v":
			cfg.Verbosity = *verbosity
		}
	})
	if err := config.Validate(&cfg); err != nil {
		return err
	}

	common.SetVerbosity(cfg.Verbosity)
	closer, err := common.SetupLogging(cfg.Logs, "tdrctl")
	if err != nil {
		return err
	}
	defer closer.Close()

	opts, err := cfg.SessionOptions(time.Now())
	if err != nil {
		return err
	}
	metrics := common.NewMetrics()
	opts.Metrics = metrics

	sink, flush, err := buildSink(cfg, stdout, opts.Location)
	if err != nil {
		return err
	}
	collector := &report.Collector{Location: opts.Location}
	dispatcher := session.NewDispatcher(opts)

	sum := report.Summary{Source: strings.Join(inputs, ","), Generated: time.Now().UTC()}
	metrics.Start()
	runErr := func() error {
		for _, path := range inputs {
			raw, err := loadDump(path, metrics)
			if err != nil {
				return err
			}
			if len(inputs) == 1 {
				sum.SHA256 = common.Sha256Hex(raw)
			}
			if cfg.Archive.Dir != "" {
				if err := archiveDump(cfg, path, raw); err != nil {
					return err
				}
			}
			_, sessions, err := eeprom.Sessions(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			common.Debugf("%s: %d sessions", path, len(sessions))
			res, err := dispatcher.Run(sessions, session.MultiSink{sink, collector})
			sum.Failures = append(sum.Failures, res.Failures...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	}()
	metrics.Stop()
	if err := flush(); err != nil && runErr == nil {
		runErr = err
	}

	sum.Sessions = collector.Rows
	sum.Metrics = metrics.Snapshot()
	if *metricsFlag {
		fmt.Fprintln(os.Stderr, "Metrics:", sum.Metrics)
	}
	if *summaryPath != "" {
		if err := report.SaveSummaryJSON(sum, *summaryPath); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if *pdfPath != "" {
		l, _ := report.ParseLanguage(cfg.Report.Lang)
		if err := report.SavePDF(sum, *pdfPath, report.PDFOptions{Language: l}); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
	}
	return runErr
}

// buildSink returns the configured output sink and a function that flushes
// it once decoding is over.
func buildSink(cfg config.Config, stdout io.Writer, loc *time.Location) (session.Sink, func() error, error) {
	noop := func() error { return nil }
	ensureDir := func() error {
		return os.MkdirAll(cfg.Output.Dir, 0o755)
	}
	switch cfg.Output.Format {
	case config.FormatFIT:
		if err := ensureDir(); err != nil {
			return nil, nil, err
		}
		return &report.FITSink{Dir: cfg.Output.Dir, Location: loc}, noop, nil
	case config.FormatNDJSON:
		bw := bufio.NewWriter(stdout)
		return report.NewNDJSONWriter(bw), bw.Flush, nil
	default:
		if cfg.Output.PerSessionFiles {
			if err := ensureDir(); err != nil {
				return nil, nil, err
			}
			return report.NewFileTextSink(cfg.Output.Dir), noop, nil
		}
		bw := bufio.NewWriter(stdout)
		return report.NewTextSink(bw), bw.Flush, nil
	}
}

func archiveDump(cfg config.Config, path string, raw []byte) error {
	if err := os.MkdirAll(cfg.Archive.Dir, 0o755); err != nil {
		return err
	}
	ct, err := archive.ParseCodec(cfg.Archive.Codec)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%016x.bin", archive.Fingerprint(raw))
	out, err := archive.Save(filepath.Join(cfg.Archive.Dir, name), raw, ct)
	if err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	common.Debugf("archived %s as %s", path, out)
	return nil
}

func runDump(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	in := fs.String("in", "", "dump file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("required: --in")
	}
	raw, err := archive.Load(*in)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(stdout)
	if err := eeprom.Dump(bw, raw); err != nil {
		return err
	}
	return bw.Flush()
}

func runArchive(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	in := fs.String("in", "", "dump file")
	out := fs.String("out", "", "archive path (codec extension is appended)")
	codec := fs.String("codec", "zstd", "zstd, s2, lz4 or none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("required: --in and --out")
	}
	ct, err := archive.ParseCodec(*codec)
	if err != nil {
		return err
	}
	raw, err := archive.Load(*in)
	if err != nil {
		return err
	}
	path, err := archive.Save(*out, raw, ct)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s (%s -> %s, xxh64 %016x)\n", path,
		common.FormatBytes(int64(len(raw))), common.FormatBytes(info.Size()), archive.Fingerprint(raw))
	return nil
}

func runReport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	summaryPath := fs.String("summary", "", "summary.json written by decode")
	pdfPath := fs.String("pdf", "", "output PDF")
	lang := fs.String("lang", "en", "report language")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *summaryPath == "" || *pdfPath == "" {
		return errors.New("required: --summary and --pdf")
	}
	l, err := report.ParseLanguage(*lang)
	if err != nil {
		return err
	}
	sum, err := report.LoadSummaryJSON(*summaryPath)
	if err != nil {
		return fmt.Errorf("load summary: %w", err)
	}
	if err := report.SavePDF(sum, *pdfPath, report.PDFOptions{Language: l}); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	fmt.Fprintln(stdout, "Wrote PDF:", *pdfPath)
	return nil
}

func runManifest(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("manifest", flag.ContinueOnError)
	inputs := fs.String("inputs", "", "comma-separated paths")
	out := fs.String("out", "manifest.json", "output json")
	verify := fs.String("verify", "", "manifest to check against the files it lists")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *verify != "" {
		m, err := manifest.Load(*verify)
		if err != nil {
			return err
		}
		if err := manifest.Verify(m); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "OK: %d items\n", len(m.Items))
		return nil
	}
	paths := splitList(*inputs)
	if len(paths) == 0 {
		return errors.New("required: --inputs")
	}
	m, err := manifest.Build(paths)
	if err != nil {
		return fmt.Errorf("manifest build: %w", err)
	}
	if err := manifest.Save(m, *out); err != nil {
		return fmt.Errorf("manifest save: %w", err)
	}
	fmt.Fprintln(stdout, "Wrote", *out)
	return nil
}

func runFingerprint(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fingerprint", flag.ContinueOnError)
	in := fs.String("in", "", "comma-separated dump files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	inputs := splitList(*in)
	if len(inputs) == 0 {
		return errors.New("required: --in")
	}
	for _, path := range inputs {
		raw, err := archive.Load(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%016x\n", path, archive.Fingerprint(raw))
		_, sessions, err := eeprom.Sessions(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for i := range sessions {
			s := &sessions[i]
			fmt.Fprintf(stdout, "  %3d\t0x%02x\t%s\t%s\n", s.Index, s.Device(), s.Header,
				session.FormatFingerprint(session.Fingerprint(s)))
		}
	}
	return nil
}
