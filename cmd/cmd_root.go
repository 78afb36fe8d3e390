// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jcodagnone/transporte/config"
)

const timestampFormat = "2006-01-02 15:04:05"

var rootOptions struct {
	envFile  string
	dbPath   string
	geocoder string
	logLevel string
	logFile  string
}

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "transporte",
	Short: "cadastro de transporte escolar e mapa de rotas",
	Long: `
transporte mantém o cadastro de motoristas, responsáveis, alunos, rotas e
solicitações de vaga do transporte escolar, e desenha as rotas em um mapa a
partir dos endereços cadastrados.
`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(rootOptions.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	if flags.Changed("db") {
		c.DBPath = rootOptions.dbPath
	}

	if flags.Changed("geocoder") {
		c.Geocoder = rootOptions.geocoder
	}

	if flags.Changed("log-file") {
		c.LogFile = rootOptions.logFile
	}

	if flags.Changed("log-level") {
		level, err := log.ParseLevel(rootOptions.logLevel)
		if err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}

		c.LogLevel = level
	}

	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	setupLogging(c)

	return nil
}

func setupLogging(c *config.Config) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
	})
	log.SetLevel(c.LogLevel)

	if c.LogFile == "" {
		log.SetOutput(os.Stderr)

		return
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 7,
		MaxAge:     7, // days
		Compress:   true,
	})
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootOptions.envFile, "env-file", "", "arquivo .env a carregar (por padrão .env, se existir)")
	flags.StringVar(&rootOptions.dbPath, "db", "db", "diretório da base de dados")
	flags.StringVar(&rootOptions.geocoder, "geocoder", config.GeocoderNominatim, "provedor de geocodificação (nominatim|google)")
	flags.StringVar(&rootOptions.logLevel, "log-level", "info", "nível de log")
	flags.StringVar(&rootOptions.logFile, "log-file", "", "grava o log neste arquivo, com rotação")
}
