package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/ambiclean/apenso/internal/bootstrap"
	"github.com/ambiclean/apenso/internal/config"
	"github.com/ambiclean/apenso/internal/core/domain"
	"github.com/ambiclean/apenso/internal/observability/logging"
)

const (
	defaultTemplate  = "Apenso II original para preenchimento.docx"
	defaultVisit     = "Ordem de visita tecnica.pdf"
	defaultWorksheet = "Visita Piracicaba com valores para mandar.pdf"
	defaultOutput    = "Apenso II - PIRACICABA (Final e Formatado).docx"
)

var version = "dev"

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "apenso",
		Usage:     "Generate the Apenso II new-services section from a technical visit and a cost worksheet",
		Version:   version,
		ArgsUsage: "[template visit worksheet output]",
		Writer:    stdout,
		ErrWriter: stderr,
		// main owns the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "title",
				Usage:   "Section header written after the page break",
				EnvVars: []string{"REPORT_TITLE"},
			},
			&cli.StringFlag{
				Name:    "summary",
				Aliases: []string{"s"},
				Usage:   "Also write a reconciliation workbook to this path",
				EnvVars: []string{"SUMMARY_XLSX_PATH"},
			},
			&cli.StringFlag{
				Name:    "vocabulary",
				Usage:   "YAML file with the brand patterns, in priority order",
				EnvVars: []string{"BRAND_VOCABULARY_PATH"},
			},
		},
		Action: generateAction,
		Commands: []*cli.Command{
			historyCommand(),
		},
	}
}

func loadConfig(c *cli.Context) config.Config {
	cfg := config.Load()
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := c.String("title"); v != "" {
		cfg.ReportTitle = v
	}
	if v := c.String("summary"); v != "" {
		cfg.SummaryXLSXPath = v
	}
	if v := c.String("vocabulary"); v != "" {
		cfg.BrandVocabularyPath = v
	}
	return cfg
}

func generateAction(c *cli.Context) error {
	req, err := requestFromArgs(c.Args().Slice())
	if err != nil {
		return err
	}

	cfg := loadConfig(c)
	logger := logging.NewJSONLogger(c.App.ErrWriter, "apenso", cfg.LogLevel)

	app, err := bootstrap.New(c.Context, cfg, logger)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	run, err := app.Generator.GenerateReport(c.Context, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "✅ Arquivo gerado com sucesso: %s\n", run.OutputPath)
	if run.SummaryPath != "" {
		fmt.Fprintf(c.App.Writer, "Resumo da conciliação: %s\n", run.SummaryPath)
	}
	return nil
}

// requestFromArgs accepts no arguments, meaning the usual file names in the
// working directory, or all four paths.
func requestFromArgs(args []string) (domain.GenerateRequest, error) {
	switch len(args) {
	case 0:
		return domain.GenerateRequest{
			TemplatePath:  defaultTemplate,
			VisitPath:     defaultVisit,
			WorksheetPath: defaultWorksheet,
			OutputPath:    defaultOutput,
		}, nil
	case 4:
		return domain.GenerateRequest{
			TemplatePath:  args[0],
			VisitPath:     args[1],
			WorksheetPath: args[2],
			OutputPath:    args[3],
		}, nil
	default:
		return domain.GenerateRequest{}, cli.Exit(fmt.Sprintf("expected 0 or 4 arguments (template visit worksheet output), got %d", len(args)), 1)
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent report runs (requires POSTGRES_DSN)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Value: 20,
				Usage: "Maximum number of runs to show",
			},
		},
		Action: func(c *cli.Context) error {
			cfg := loadConfig(c)
			if cfg.PostgresDSN == "" {
				return cli.Exit("history needs POSTGRES_DSN", 1)
			}
			logger := logging.NewJSONLogger(c.App.ErrWriter, "apenso", cfg.LogLevel)

			app, err := bootstrap.New(c.Context, cfg, logger)
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()
			if app.History == nil {
				return cli.Exit("run history is unavailable, see the log for the database error", 1)
			}

			runs, err := app.History.ListRuns(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tID\tITEMS\tMATCHED\tTOTAL\tOUTPUT")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
					run.ID,
					run.TechnicalItems,
					run.MatchedItems,
					domain.FormatBRL(run.TotalAmount),
					run.OutputPath,
				)
			}
			return w.Flush()
		},
	}
}
