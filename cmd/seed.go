package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v3"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/db"
	"plp-bookstore/internal/models"
)

var seedFlags struct {
	file string
	drop bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load books from a YAML file into the collection",
	Long: `Load books from a YAML file into the collection.

The file holds a list of books with the fields title, author, genre,
published_year, price and in_stock. Every record is validated before
anything is written.

Example:
  bookstore seed --file configs/books.yaml --drop`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFlags.file, "file", "f", "", "YAML file with the books to insert")
	seedCmd.Flags().BoolVar(&seedFlags.drop, "drop", false, "remove existing books first")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	books, err := readBooksFile(seedFlags.file)
	if err != nil {
		return configError{err}
	}

	logger := newLogger(cfg.LogLevel)
	return withClient(cmd.Context(), cfg, logger, func(ctx context.Context, client *mongo.Client) error {
		c := catalog.New(db.GetCollection(client, cfg.DBName, cfg.Collection))

		if seedFlags.drop {
			removed, err := c.Clear(ctx)
			if err != nil {
				return err
			}
			logger.Info("removed existing books", "count", removed)
		}

		n, err := c.InsertBooks(ctx, books)
		if err != nil {
			return err
		}
		total, err := c.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d books, collection now holds %d\n", n, total)
		return nil
	})
}

func readBooksFile(path string) ([]models.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening books file: %w", err)
	}
	defer f.Close()
	return decodeBooks(f)
}

// decodeBooks parses a YAML list of books and validates every record.
func decodeBooks(r io.Reader) ([]models.Book, error) {
	var books []models.Book
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&books); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("books file is empty")
		}
		return nil, fmt.Errorf("parsing books file: %w", err)
	}

	for i, b := range books {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("book %d: %w", i+1, err)
		}
	}
	return books, nil
}
