package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/carbon"
)

// importable collections
const (
	collActionCards       = "actionCards"
	collActionCardBatches = "actionCardBatches"
	collPersonas          = "personas"
	collModels            = "models"
)

var (
	csvCollections  = []string{collActionCards, collActionCardBatches, collPersonas}
	jsonCollections = []string{collActionCards, collActionCardBatches, collPersonas, collModels}
)

// decodeFunc fills dst, a pointer to a slice of documents.
type decodeFunc func(dst interface{}) error

func (cli *commandLine) importCSVCmd() *cobra.Command {
	var drop bool
	cmd := &cobra.Command{
		Use:   "importcsv COLLECTION FILE",
		Short: fmt.Sprintf("Import a CSV file into a collection (%s)", strings.Join(csvCollections, ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cli.importFile(args[0], args[1], drop, csvCollections, csvDecoder)
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "Drop the collection before importing")
	return cmd
}

func (cli *commandLine) importJSONCmd() *cobra.Command {
	var drop bool
	cmd := &cobra.Command{
		Use:   "importjson COLLECTION FILE",
		Short: fmt.Sprintf("Import a JSON array into a collection (%s)", strings.Join(jsonCollections, ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return cli.importFile(args[0], args[1], drop, jsonCollections, jsonDecoder)
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "Drop the collection before importing")
	return cmd
}

func (cli *commandLine) importFile(
	collection, path string,
	drop bool,
	supported []string,
	newDecoder func(r io.Reader) decodeFunc,
) error {
	if !core.StringInSlice(collection, supported) {
		return fmt.Errorf("unsupported collection %q", collection)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer func() { _ = f.Close() }()

	n, err := cli.importDocs(context.Background(), collection, drop, newDecoder(f))
	if err != nil {
		return errors.Wrapf(err, "importing %s", collection)
	}
	fmt.Fprintf(cli.out, "%d %s imported\n", n, collection)
	return nil
}

func (cli *commandLine) importDocs(ctx context.Context, collection string, drop bool, decode decodeFunc) (int, error) {
	switch collection {
	case collActionCards:
		var cards []actioncard.Card
		if err := decode(&cards); err != nil {
			return 0, err
		}
		return len(cards), cli.cardSvc.ImportCards(ctx, drop, cards...)

	case collActionCardBatches:
		var batches []actioncard.Batch
		if err := decode(&batches); err != nil {
			return 0, err
		}
		return len(batches), cli.cardSvc.ImportBatches(ctx, drop, batches...)

	case collPersonas:
		var personas []carbon.Persona
		if err := decode(&personas); err != nil {
			return 0, err
		}
		return len(personas), cli.carbonSvc.ImportPersonas(ctx, drop, personas...)

	case collModels:
		// models are versioned: the last one imported becomes the latest, nothing is dropped
		var models []carbon.Model
		if err := decode(&models); err != nil {
			return 0, err
		}
		return len(models), cli.carbonSvc.ImportModels(ctx, models...)
	}
	return 0, fmt.Errorf("unsupported collection %q", collection)
}

func jsonDecoder(r io.Reader) decodeFunc {
	return func(dst interface{}) error {
		return errors.Wrap(json.NewDecoder(r).Decode(dst), "decoding json")
	}
}

// csvDecoder maps every row to its header.
// Cells holding a JSON list or object are decoded, empty cells are skipped and numbers are weakly typed.
func csvDecoder(r io.Reader) decodeFunc {
	return func(dst interface{}) error {
		records, err := csv.NewReader(r).ReadAll()
		if err != nil {
			return errors.Wrap(err, "reading csv")
		}
		if len(records) == 0 {
			return errors.New("missing csv header")
		}

		header := records[0]
		rows := make([]map[string]interface{}, 0, len(records)-1)
		for i, record := range records[1:] {
			row := make(map[string]interface{}, len(header))
			for j, cell := range record {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				if cell[0] == '[' || cell[0] == '{' {
					var v interface{}
					if err := json.Unmarshal([]byte(cell), &v); err != nil {
						return errors.Wrapf(err, "row %d: column %s", i+1, header[j])
					}
					row[header[j]] = v
					continue
				}
				row[header[j]] = cell
			}
			rows = append(rows, row)
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           dst,
		})
		if err != nil {
			return err
		}
		return errors.Wrap(decoder.Decode(rows), "decoding csv rows")
	}
}
