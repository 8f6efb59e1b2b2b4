package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xiview-api/config"
	"xiview-api/database"
	"xiview-api/services"
)

var (
	uploadID  int64
	userID    string
	projectID string
	fileName  string

	logging *zap.Logger
	writer  *services.Writer
)

var rootCmd = &cobra.Command{
	Use:   "xiwriter",
	Short: "writes parsed identification results into the xiview database",
	Long: `xiwriter inserts rows produced by the identification file parser into the
xiview database and completes the upload row. Without --upload-id a new
upload is created for --project and --file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts, err := writerOptions()
		if err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := database.Open(cfg.DSN(), database.PoolConfigFrom(cfg), logging)
		if err != nil {
			return err
		}
		writer, err = services.NewWriter(cmd.Context(), db, logging, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "upload %d\n", writer.UploadID)
		return nil
	},
}

var table string

var insertCmd = &cobra.Command{
	Use:   "insert --table T rows.json...",
	Short: "insert rows from JSON files into a table",
	Long:  `each file holds a JSON array of objects mapping column names to values.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bar := progressbar.NewOptions(len(args),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("writing "+table),
			progressbar.OptionShowCount(),
		)
		for _, path := range args {
			rows, err := readFile(path, readRows)
			if err != nil {
				return err
			}
			if err := writer.WriteData(cmd.Context(), table, rows); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			_ = bar.Add(1)
		}
		return bar.Finish()
	},
}

var mzidInfoCmd = &cobra.Command{
	Use:   "mzid-info info.json",
	Short: "store spectra formats, provider, audits, samples and bib of the upload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := readFile(args[0], readMzidInfo)
		if err != nil {
			return err
		}
		return writer.WriteMzidInfo(cmd.Context(), info)
	},
}

var (
	containsCrosslinks bool
	warningsFile       string
)

var otherInfoCmd = &cobra.Command{
	Use:   "other-info [--contains-crosslinks] [--warnings warnings.json]",
	Short: "store the crosslink flag and parser warnings of the upload",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var warnings any = []any{}
		if warningsFile != "" {
			w, err := readFile(warningsFile, readWarnings)
			if err != nil {
				return err
			}
			warnings = w
		}
		return writer.WriteOtherInfo(cmd.Context(), containsCrosslinks, warnings)
	},
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&uploadID, "upload-id", 0, "existing upload to write into")
	rootCmd.PersistentFlags().StringVar(&userID, "user-id", "", "uuid of the uploading user")
	rootCmd.PersistentFlags().StringVar(&projectID, "project", "", "project accession of a new upload")
	rootCmd.PersistentFlags().StringVar(&fileName, "file", "", "identification file name of a new upload")

	insertCmd.Flags().StringVar(&table, "table", "", "target table, e.g. ModifiedPeptide")
	_ = insertCmd.MarkFlagRequired("table")

	otherInfoCmd.Flags().BoolVar(&containsCrosslinks, "contains-crosslinks", false, "upload contains crosslinked identifications")
	otherInfoCmd.Flags().StringVar(&warningsFile, "warnings", "", "JSON file with the parser warnings")

	rootCmd.AddCommand(insertCmd, mzidInfoCmd, otherInfoCmd)
}

func writerOptions() (services.WriterOptions, error) {
	opts := services.WriterOptions{UploadID: uploadID, ProjectID: projectID, IdentificationFileName: fileName}
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return opts, fmt.Errorf("--user-id: %w", err)
		}
		opts.UserID = &id
	}
	if opts.UploadID == 0 && (opts.ProjectID == "" || opts.IdentificationFileName == "") {
		return opts, errors.New("either --upload-id or both --project and --file are required")
	}
	return opts, nil
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Numbers stay json.Number so that integers are not turned into floats.
func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

func readRows(r io.Reader) ([]map[string]any, error) {
	var rows []map[string]any
	if err := newDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

func readMzidInfo(r io.Reader) (services.MzidInfo, error) {
	var raw struct {
		SpectraFormats           any `json:"spectra_formats"`
		Provider                 any `json:"provider"`
		AuditCollection          any `json:"audit_collection"`
		AnalysisSampleCollection any `json:"analysis_sample_collection"`
		Bib                      any `json:"bib"`
	}
	if err := newDecoder(r).Decode(&raw); err != nil {
		return services.MzidInfo{}, fmt.Errorf("decode mzid info: %w", err)
	}
	return services.MzidInfo(raw), nil
}

func readWarnings(r io.Reader) (any, error) {
	var warnings any
	if err := newDecoder(r).Decode(&warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}
	return warnings, nil
}

func main() {
	var err error
	logging, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.Error("xiwriter failed", zap.Error(err))
		os.Exit(1)
	}
}
