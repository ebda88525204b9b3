package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nireo/rapu/btree"
	"github.com/nireo/rapu/db"
	"github.com/nireo/rapu/pager"
)

func loadConfig() {
	viper.SetDefault("path", "rapu.db")
	viper.SetDefault("page_size", pager.DefaultPageSize)
	viper.SetDefault("min_fill_percent", pager.DefaultMinFillPercent)
	viper.SetDefault("max_fill_percent", pager.DefaultMaxFillPercent)
	viper.SetDefault("log_level", "info")

	viper.SetEnvPrefix("RAPU")
	viper.AutomaticEnv()

	viper.SetConfigName("rapu")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logrus.WithError(err).Fatal("reading config file")
		}
	}
}

func executeStatement(database *db.DB, stmt *Statement) {
	switch stmt.Type {
	case StatementPut:
		if err := database.Put(stmt.Key, stmt.Value); err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println("ok")
	case StatementGet:
		value, err := database.Get(stmt.Key)
		if errors.Is(err, btree.ErrNotFound) {
			fmt.Println("(not found)")
			return
		}
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println(string(value))
	}
}

func main() {
	loadConfig()

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	opts := pager.Options{
		PageSize:       viper.GetInt("page_size"),
		MinFillPercent: viper.GetFloat64("min_fill_percent"),
		MaxFillPercent: viper.GetFloat64("max_fill_percent"),
	}
	database, err := db.Open(viper.GetString("path"), opts)
	if err != nil {
		logrus.WithError(err).Fatal("opening database")
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		printPrompt()
		line, err := readInput(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			logrus.WithError(err).Fatal("reading input")
		}
		if line == "" {
			continue
		}

		if line[0] == '.' {
			switch handleMetaCommand(line) {
			case MetaCommandExit:
				if err := database.Close(); err != nil {
					logrus.WithError(err).Fatal("closing database")
				}
				return
			case MetaCommandUnrecognizedCommand:
				fmt.Printf("unrecognized command %q\n", line)
			}
			continue
		}

		var stmt Statement
		switch prepareStatement(line, &stmt) {
		case PrepareSyntaxError:
			fmt.Println("syntax error, try .help")
			continue
		case PrepareUnrecognizedStatement:
			fmt.Printf("unrecognized statement %q\n", line)
			continue
		}
		executeStatement(database, &stmt)
	}

	if err := database.Close(); err != nil {
		logrus.WithError(err).Fatal("closing database")
	}
}
