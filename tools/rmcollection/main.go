package main

import (
	"fmt"
	"log"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/q"
	"github.com/mdouchement/grandmaster/internal/database"
	"github.com/mdouchement/grandmaster/internal/model"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	var codec string

	c := &cobra.Command{
		Use:   "rmcollection DATABASE CODE",
		Short: "Remove a collection and its items from the storm database",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			option, err := database.StormCodecByName(codec)
			if err != nil {
				return err
			}

			//
			//
			fmt.Println("Opening", args[0])
			db, err := storm.Open(args[0], option)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			// Fetch collection
			var collection model.Collection
			err = db.One("ID", args[1], &collection)
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "find collection")
			}
			if err == nil {
				fmt.Println("Collection found:", collection.Name)
			}

			// Deleting collection's items
			err = db.Select(q.Eq("CollectionID", args[1])).Delete(&model.Item{})
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete items")
			}
			fmt.Println("Items removed")

			if collection.ID == "" {
				fmt.Println("No collection for this code")
				return nil
			}

			// Delete collection
			err = db.DeleteStruct(&collection)
			if err != nil && err != storm.ErrNotFound {
				return errors.Wrap(err, "delete collection")
			}
			fmt.Println("Collection removed")

			return nil
		},
	}
	c.Flags().StringVar(&codec, "codec", "msgpack", "Storm codec (msgpack, cbor or binc)")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
