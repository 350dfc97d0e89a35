package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/asdine/storm/v3"
	"github.com/mdouchement/grandmaster/internal/database"
	"github.com/mdouchement/grandmaster/internal/model"
	"github.com/mdouchement/grandmaster/pkg/stormsql"
	"github.com/mdouchement/grandmaster/pkg/structs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// go run tools/console/main.go grandmaster.db " SELECT Name, Owned FROM items WHERE CollectionID = 'k3x9qa' AND CreatedAt > '2024-05-01 10:00:00' ORDER BY CreatedAt;  "

func main() {
	var codec string

	c := &cobra.Command{
		Use:   "console DATABASE SQL",
		Short: "SQL console for grandmaster storm database",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			//
			//
			sc, err := stormsql.ParseSelect(args[1])
			if err != nil {
				return err
			}

			//
			//
			option, err := database.StormCodecByName(codec)
			if err != nil {
				return err
			}

			fmt.Println("Opening", args[0])
			db, err := storm.Open(args[0], option)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			//
			// Prepare request
			//

			query := db.Select(sc.Matcher)
			if sc.Skip > 0 {
				query.Skip(sc.Skip)
			}
			if sc.Limit > 0 {
				query.Limit(sc.Limit)
			}
			if len(sc.OrderBy) > 0 {
				query.OrderBy(sc.OrderBy...)
				if sc.OrderByReversed {
					query.Reverse()
				}
			}

			// Execute

			if sc.Count {
				return count(sc, query)
			}

			return list(sc, query)
		},
	}
	c.Flags().StringVar(&codec, "codec", "msgpack", "Storm codec (msgpack, cbor or binc)")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func count(sc *stormsql.SelectClause, query storm.Query) error {
	var record any
	switch sc.Tablename {
	case "collections":
		record = &model.Collection{}
	case "items":
		record = &model.Item{}
	default:
		return errors.Errorf("unknown tablename: %s", sc.Tablename)
	}

	n, err := query.Count(record)
	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	fmt.Println("Count:", n)
	return nil
}

func list(sc *stormsql.SelectClause, query storm.Query) error {
	var records []any

	switch sc.Tablename {
	case "collections":
		var collections []*model.Collection
		if err := query.Find(&collections); err != nil && err != storm.ErrNotFound {
			return errors.Wrap(err, "could not perform query")
		}
		for _, collection := range collections {
			records = append(records, collection)
		}
	case "items":
		var items []*model.Item
		if err := query.Find(&items); err != nil && err != storm.ErrNotFound {
			return errors.Wrap(err, "could not perform query")
		}
		for _, item := range items {
			records = append(records, item)
		}
	default:
		return errors.Errorf("unknown tablename: %s", sc.Tablename)
	}

	if len(sc.SelectedFields) == 0 {
		return jsondump(records)
	}

	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		p, err := structs.Project(record, sc.SelectedFields)
		if err != nil {
			return err
		}
		rows = append(rows, p.Map())
	}
	return jsondump(rows)
}

func jsondump(v any) error {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not serialize records")
	}
	fmt.Println(string(d))
	return nil
}
