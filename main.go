package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/reportpress/chrome"
	"github.com/ByLCY/reportpress/config"
	"github.com/ByLCY/reportpress/dsl"
	"github.com/ByLCY/reportpress/fonts"
	"github.com/ByLCY/reportpress/layout"
	"github.com/ByLCY/reportpress/report"
	canvasrenderer "github.com/ByLCY/reportpress/renderer/canvas"
	"github.com/ByLCY/reportpress/style"
)

// env 保存一次运行期间共享的配置与日志。
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func (e *env) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	if e.cfg, err = config.LoadConfiguration(cmd.String("config")); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if e.log, err = e.cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	e.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if cmd.String("config") == "" {
		e.log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func (e *env) after(_ context.Context, _ *cli.Command) error {
	if e.log == nil {
		return nil
	}
	e.log.Debug("Program ended")
	// stdout/stderr 不支持 sync 时会报错，忽略
	_ = e.log.Sync()
	return nil
}

func (e *env) exitErrHandler(_ context.Context, _ *cli.Command, err error) {
	if e.log != nil && err != nil {
		e.log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

var errWasHandled bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	e := &env{}
	app := &cli.Command{
		Name:            config.AppName,
		Usage:           "service report layout and PDF generation",
		Version:         "1.0.0 (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          e.before,
		After:           e.after,
		ExitErrHandler:  e.exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Lays out a service report (JSON) and renders it to PDF",
				ArgsUsage: "SOURCE [DESTINATION]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "stylesheet", Aliases: []string{"s"}, Usage: "apply style overrides from `FILE` (.pss)"},
					&cli.StringFlag{Name: "debug-layout", Usage: "write the computed layout as JSON to `FILE`"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite destination if it exists"},
				},
				Action: e.generate,
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to report data (JSON)

DESTINATION:
    output file or directory; when a directory or absent the file name is
    produced from document.filename_template
`, cli.CommandHelpTemplate),
			},
			{
				Name:      "dumpconfig",
				Usage:     "Dumps either default or actual configuration (YAML)",
				ArgsUsage: "DESTINATION",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				Action: e.dumpConfig,
			},
		},
	}

	err := app.Run(ctx, os.Args)
	stop()
	if err != nil {
		if !errWasHandled {
			fmt.Fprintf(os.Stderr, "\n*** ERROR ***: %s\n", err)
		}
		os.Exit(1)
	}
}

// generate 串联配置、样式、字体、排版与渲染。
func (e *env) generate(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return fmt.Errorf("no input file has been specified")
	}
	src := cmd.Args().Get(0)
	dst := cmd.Args().Get(1)

	stylesheet := cmd.String("stylesheet")
	if stylesheet == "" {
		stylesheet = e.cfg.Document.StylesheetPath
	}
	gen, err := e.newGenerator(stylesheet)
	if err != nil {
		return err
	}
	return run(gen, src, dst, cmd.String("debug-layout"), cmd.Bool("overwrite"), e.log)
}

// newGenerator builds the generator from the active configuration.
func (e *env) newGenerator(stylesheet string) (*report.Generator, error) {
	cfg := e.cfg

	overrides := maps.Clone(cfg.Style)
	if overrides == nil {
		overrides = map[string]string{}
	}
	assets := append([]fonts.Asset(nil), cfg.Fonts...)
	if stylesheet != "" {
		ss, err := dsl.LoadFile(stylesheet)
		if err != nil {
			return nil, fmt.Errorf("加载样式表失败: %w", err)
		}
		maps.Copy(overrides, ss.Style)
		assets = append(assets, ss.Fonts...)
		e.log.Debug("Stylesheet loaded", zap.String("name", ss.Name), zap.Int("keys", len(ss.Style)), zap.Int("fonts", len(ss.Fonts)))
	}
	styleCfg, err := style.FromOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("样式配置无效: %w", err)
	}

	reg := fonts.NewRegistry(cfg.Document.FontDir, e.log)
	reg.RegisterAll(assets)
	rnd := canvasrenderer.NewRenderer(reg, e.log)

	var errs error
	dims, err := cfg.ChromeGeometry()
	errs = multierr.Append(errs, err)
	page, err := cfg.PageContext()
	errs = multierr.Append(errs, err)
	tuning, err := cfg.Tuning()
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, fmt.Errorf("页面配置无效: %w", errs)
	}

	base := chrome.Chrome{
		Dims:       dims,
		Texts:      chromeTexts(cfg.Chrome),
		Styles:     chrome.StylesFrom(styleCfg),
		Logo:       chrome.LoadLogo(cfg.Chrome.LogoPaths, cfg.Document.AssetDir, e.log),
		Typesetter: rnd,
		Log:        e.log,
	}
	return report.NewGenerator(report.Options{
		Page:   page,
		Tuning: tuning,
		Style:  styleCfg,
		Dims:   dims,
		Meta: layout.DocumentMeta{
			Title:   cfg.Document.Title,
			Author:  cfg.Document.Author,
			Creator: cfg.Document.Creator,
		},
		FilenameTemplate: cfg.Document.FilenameTemplate,
		Log:              e.log,
	}, rnd, rnd, report.WithChrome(base))
}

func chromeTexts(c config.ChromeConfig) chrome.Texts {
	t := chrome.DefaultTexts()
	if c.Title != "" {
		t.Title = c.Title
	}
	if c.Confirmation != "" {
		t.Confirmation = c.Confirmation
	}
	if c.PageLabel != "" {
		t.PageLabel = c.PageLabel
	}
	t.Contact = c.Contact
	t.LogoText = c.LogoText
	return t
}

// run 读取报告数据，生成 PDF 并写入目标位置。
func run(gen *report.Generator, src, dst, debugPath string, overwrite bool, log *zap.Logger) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("无法打开报告数据 %s: %w", src, err)
	}
	defer f.Close()

	r, err := report.Decode(f)
	if err != nil {
		return err
	}

	if debugPath != "" {
		res, err := gen.Layout(r)
		if err != nil {
			return err
		}
		if err := writeDebug(res, debugPath); err != nil {
			return err
		}
	}

	doc, err := gen.Generate(r)
	if err != nil {
		return err
	}

	out := destination(dst, doc.Filename)
	if !overwrite {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("输出文件已存在: %s", out)
		}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(out, doc.Bytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	log.Info("PDF written", zap.String("path", out), zap.String("record", doc.RecordID), zap.Int("pages", doc.Pages))
	return nil
}

// destination 决定输出路径：目录或空值时使用生成的文件名。
func destination(dst, name string) string {
	if dst == "" {
		return name
	}
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		return filepath.Join(dst, name)
	}
	return dst
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func (e *env) dumpConfig(_ context.Context, cmd *cli.Command) error {
	var (
		data []byte
		err  error
	)
	if cmd.Bool("default") {
		data, err = config.Prepare()
	} else {
		data, err = config.Dump(e.cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	var out io.Writer = os.Stdout
	if fname := cmd.Args().Get(0); fname != "" {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
