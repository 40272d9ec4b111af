package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/findash/internal/config"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

const (
	configSchemaName   = "findash-config.json"
	sampleConfigName   = "findash.yaml"
	strategySchemaName = "strategy-params.json"
	downloadSchemaName = "download-config.json"
)

func validatePaths(schemaPath, sampleConfigPath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if sampleConfigPath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(schemaName string) error {
	if schemaName == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(schemaName, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", schemaName)
	}

	return nil
}

// getSchemaReference returns the modeline that points YAML editors at the schema.
func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}

// generateSchemaFile writes schemaJSON to schemaPath, creating the directory.
func generateSchemaFile(schemaJSON string, schemaPath string) error {
	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig writes cfg as YAML unless samplePath already exists.
func generateSampleConfig(cfg config.Config, samplePath string, schemaName string) error {
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	yamlBytes, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	yamlBytes = append([]byte(getSchemaReference(schemaName)), yamlBytes...)

	if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	return nil
}

// generate writes every schema and the sample config into dir.
func generate(dir string) error {
	schemaPath := filepath.Join(dir, configSchemaName)
	sampleConfigPath := filepath.Join(dir, sampleConfigName)

	if err := validatePaths(schemaPath, sampleConfigPath); err != nil {
		return err
	}

	configSchema, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate config schema: %w", err)
	}

	params := types.DefaultStrategyParams()

	strategySchema, err := params.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate strategy schema: %w", err)
	}

	downloadSchema, err := marketdata.GetDownloadConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate download schema: %w", err)
	}

	schemas := map[string]string{
		configSchemaName:   configSchema,
		strategySchemaName: strategySchema,
		downloadSchemaName: downloadSchema,
	}

	for name, schema := range schemas {
		if err := validateSchemaName(name); err != nil {
			return err
		}

		if err := generateSchemaFile(schema, filepath.Join(dir, name)); err != nil {
			return err
		}

		log.Printf("Schema successfully generated at %s", filepath.Join(dir, name))
	}

	if err := generateSampleConfig(config.Default(), sampleConfigPath, configSchemaName); err != nil {
		return err
	}

	log.Printf("Sample config available at %s", sampleConfigPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "generate",
		Usage: "Generate JSON schemas and a sample config file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Output directory",
				Value:   "./config",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return generate(cmd.String("dir"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
