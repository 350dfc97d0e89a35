package main

import (
	"fmt"
	"hash"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/mdouchement/grandmaster/internal/database"
	"github.com/mdouchement/grandmaster/internal/server"
	"github.com/mdouchement/grandmaster/internal/server/middlewares"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

const (
	stormDBName  = "grandmaster.db"
	sqliteDBName = "grandmaster.sqlite"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &cobra.Command{
		Use:     "grandmaster",
		Short:   "Collection server for Grand Master Set trackers",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.ExactArgs(0),
	}
	c.PersistentFlags().StringVarP(&cfg, "config", "c", "", "Configuration file")

	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)
	c.AddCommand(serverCmd)
	c.AddCommand(keygenCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func load() (*koanf.Koanf, error) {
	konf := koanf.New(".")
	if err := konf.Load(file.Provider(cfg), yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, "could not load configuration")
	}
	return konf, nil
}

func dbnameWithPath(konf *koanf.Koanf) string {
	name := stormDBName
	if konf.String("database_driver") == database.DriverSQLite {
		name = sqliteDBName
	}

	path := konf.String("database_path")
	if len(path) == 0 {
		return name
	}
	return filepath.Join(path, name)
}

func signingKey(konf *koanf.Koanf) ([]byte, error) {
	if konf.String("secret_key") == "" {
		return nil, errors.New("secret_key not found")
	}
	return kdf(32, konf.MustBytes("secret_key")), nil
}

func kdf(l int, k []byte) []byte {
	nhash := func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	}

	payload := make([]byte, l)

	kdf := hkdf.New(nhash, k, nil, []byte("grandmaster access key"))
	_, err := io.ReadFull(kdf, payload)
	if err != nil {
		panic(err)
	}

	return payload
}

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			return database.Init(konf.String("database_driver"), dbnameWithPath(konf), konf.String("storm_codec"))
		},
	}

	//
	reindexCmd = &cobra.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			if konf.String("database_driver") == database.DriverSQLite {
				return errors.New("reindex is only supported by the storm driver")
			}
			return database.StormReIndex(dbnameWithPath(konf), konf.String("storm_codec"))
		},
	}

	//
	keygenCmd = &cobra.Command{
		Use:   "keygen SUBJECT",
		Short: "Generate an access key",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			key, err := signingKey(konf)
			if err != nil {
				return err
			}

			token, err := middlewares.NewAccessKey(key, args[0])
			if err != nil {
				return err
			}

			fmt.Println(token)
			return nil
		},
	}

	//
	//
	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Start server",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			key, err := signingKey(konf)
			if err != nil {
				return err
			}

			logger := logrus.New()
			if level := konf.String("log_level"); level != "" {
				lvl, err := logrus.ParseLevel(level)
				if err != nil {
					return errors.Wrap(err, "invalid log_level")
				}
				logger.SetLevel(lvl)
			}

			db, err := database.Open(konf.String("database_driver"), dbnameWithPath(konf), konf.String("storm_codec"))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			engine := server.EchoEngine(server.Controller{
				Version:    version,
				Database:   db,
				Logger:     logger,
				SigningKey: key,
				FeedBuffer: konf.Int("feed_buffer"),
			})
			server.PrintRoutes(engine)

			address := konf.String("address")
			message := "could not run server"
			logger.Infof("Server listening on %s", address)
			parts := strings.Split(address, ":")
			if len(parts) == 2 && parts[0] == "unix" {
				socketFile := parts[1]
				if _, err := os.Stat(socketFile); err == nil {
					logger.Infof("Removing existing %s", socketFile)
					os.Remove(socketFile)
				}
				defer os.Remove(socketFile)
				listener, err := net.Listen(parts[0], socketFile)
				if err != nil {
					return err
				}
				return errors.Wrap(engine.Server.Serve(listener), message)
			}
			return errors.Wrap(engine.Start(address), message)
		},
	}
)
