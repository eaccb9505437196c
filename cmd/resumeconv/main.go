package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"resume-docx-go/internal/codec"
	"resume-docx-go/internal/config"
	appCoreLogger "resume-docx-go/internal/logger"
	"resume-docx-go/internal/session"
	"resume-docx-go/internal/storage"
)

type options struct {
	input      string
	outDir     string
	kind       string
	docx       bool
	record     string
	preview    string
	configPath string
	verbose    bool
}

func main() {
	var opts options
	pflag.StringVarP(&opts.input, "input", "i", "", "Input file (.txt, .md, .docx, .pdf, .json, .yaml)")
	pflag.StringVarP(&opts.outDir, "out", "o", ".", "Output directory")
	pflag.StringVar(&opts.kind, "kind", "auto", "Import kind: auto, docx, text, record")
	pflag.BoolVar(&opts.docx, "docx", false, "Write the tabular .docx document")
	pflag.StringVar(&opts.record, "record", "", "Write the serialized record (json or yaml)")
	pflag.StringVar(&opts.preview, "preview", "", "Write a preview (html or md)")
	pflag.StringVarP(&opts.configPath, "config", "c", "", "Path to config file")
	pflag.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")
	pflag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintln(os.Stderr, "resumeconv:", err)
		var opErr *session.OpError
		if errors.As(err, &opErr) {
			fmt.Fprintln(os.Stderr, session.UserMessage(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.input == "" {
		pflag.Usage()
		return fmt.Errorf("缺少输入文件 (-i)")
	}
	if !opts.docx && opts.record == "" && opts.preview == "" {
		opts.docx = true
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	level := cfg.Logger.Level
	if opts.verbose {
		level = "debug"
	}
	appCoreLogger.Init(appCoreLogger.Config{Level: level, Format: "pretty", TimeFormat: "15:04:05"})

	kind, err := session.ParseImportKind(opts.kind)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("读取输入文件失败: %w", err)
	}

	sink, err := storage.NewFileSink(opts.outDir)
	if err != nil {
		return err
	}
	manager := session.NewManager(session.ConverterFromConfig(ctx, cfg), storage.NewMemoryStore(0), sink)
	s, err := manager.Create()
	if err != nil {
		return err
	}

	rec, err := s.Import(ctx, data, filepath.Base(opts.input), kind)
	if err != nil {
		return err
	}
	summary := rec.Summarize()
	appCoreLogger.Info().
		Int("skills", summary.SkillCount).
		Int("education", summary.EducationCount).
		Int("experience", summary.ExperienceCount).
		Msg("解析完成")

	var exports []session.Export
	if opts.docx {
		exp, err := s.ExportDocx(ctx)
		if err != nil {
			return err
		}
		exports = append(exports, exp)
	}
	if opts.record != "" {
		format, err := codec.ParseFormat(opts.record)
		if err != nil {
			return err
		}
		exp, err := s.ExportRecord(ctx, format)
		if err != nil {
			return err
		}
		exports = append(exports, exp)
	}
	if opts.preview != "" {
		exp, err := previewExport(ctx, s, opts.preview)
		if err != nil {
			return err
		}
		exports = append(exports, exp)
	}

	for _, exp := range exports {
		path, err := sink.Put(ctx, exp.Filename, exp.ContentType, exp.Data)
		if err != nil {
			return err
		}
		fmt.Println(path)
	}
	return nil
}

func previewExport(ctx context.Context, s *session.Session, mode string) (session.Export, error) {
	var pm session.PreviewMode
	var ext string
	switch strings.ToLower(mode) {
	case "html":
		pm, ext = session.PreviewHTML, ".html"
	case "md", "markdown":
		pm, ext = session.PreviewMarkdown, ".md"
	default:
		return session.Export{}, fmt.Errorf("未知的预览格式 %q (html 或 md)", mode)
	}

	p, err := s.Preview(ctx, pm)
	if err != nil {
		return session.Export{}, err
	}
	rec, err := s.Record(ctx)
	if err != nil {
		return session.Export{}, err
	}
	base := strings.TrimSuffix(codec.RecordFilename(rec, codec.FormatJSON), ".json")
	return session.Export{
		Filename:    base + "_preview" + ext,
		ContentType: p.ContentType,
		Data:        []byte(p.Body),
	}, nil
}
