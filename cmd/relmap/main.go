package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/relmap/relmap"
	"github.com/relmap/relmap/config"
	"github.com/relmap/relmap/htmlgen"
)

var errUsage = errors.New("usage: relmap [-config relmap.yaml] -model customer.yaml [-op insert|update|delete|form|grid|all]")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("relmap", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "Configuration file, YAML or TOML")
	modelPath := flags.String("model", "", "Model definition file with records, YAML or TOML")
	op := flags.String("op", "all", "Output: insert, update, delete, form, grid or all")
	page := flags.String("page", "index.html", "Page targeted by forms and grid links")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" {
		return errUsage
	}

	file := &config.File{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		file = loaded
	}

	cfg, err := file.BuildWith(stderr)
	if err != nil {
		return err
	}
	g, err := relmap.Open(cfg)
	if err != nil {
		return err
	}

	model, err := loadModel(*modelPath)
	if err != nil {
		return err
	}
	_, records, err := model.define(cfg.NamingStrategy)
	if err != nil {
		return err
	}

	statements := map[string]func(interface{}) (string, error){
		"insert": g.Insert,
		"update": g.Update,
		"delete": g.Delete,
	}
	h := htmlgen.New(g)

	switch *op {
	case "insert", "update", "delete":
		for _, record := range records {
			sql, err := statements[*op](record)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, sql)
		}
	case "form":
		for _, record := range records {
			form, err := h.Form(record, *page, "alter")
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, form)
		}
	case "grid":
		grid, err := h.Grid(records, *page)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, grid)
	case "all":
		for _, record := range records {
			for _, name := range []string{"insert", "update", "delete"} {
				sql, err := statements[name](record)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, sql)
			}
		}
	default:
		return fmt.Errorf("unknown op %q: %w", *op, errUsage)
	}
	return nil
}
