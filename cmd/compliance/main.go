package main

import (
	"compliance_checker/internal/api"
	"compliance_checker/internal/domain"
	"compliance_checker/internal/processor"
	"compliance_checker/internal/repository/memory"
	"compliance_checker/internal/rules"
	"compliance_checker/pkg/logger"
	"compliance_checker/pkg/validator"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
)

const (
	appName = "compliance_checker"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "serve":
		err = serveCmd(os.Args[2:])
	case "check":
		err = checkCmd(os.Args[2:])
	case "rules":
		err = rulesCmd(os.Args[2:])
	case "version":
		fmt.Println(appName, api.Version)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `%s - MSME compliance checker

Usage:
  compliance serve  [--config ./configs/compliance.yaml]
  compliance check  --turnover <rupees> --employees <count> [--rules pack.yaml] [--json]
  compliance rules  validate --file pack.yaml
  compliance rules  export
  compliance version
`, appName)
}

func checkCmd(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	turnover := fs.String("turnover", "", "Annual turnover in rupees")
	employees := fs.String("employees", "", "Number of employees")
	rulesFile := fs.String("rules", "", "Rule pack YAML (defaults to the built-in catalog)")
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	_ = fs.Parse(args)

	ctx := context.Background()
	log := logger.New("text", "warn", os.Stderr)

	var src rules.Source = rules.StaticSource{}
	if *rulesFile != "" {
		src = rules.FileSource{Path: *rulesFile}
	}
	table, err := rules.Load(ctx, src, log)
	if err != nil {
		return err
	}

	profile, err := validator.NewProfileValidator().ParseProfile(*turnover, *employees)
	if err != nil {
		return err
	}

	proc := processor.NewCheckProcessor(table, memory.NewCheckRepository(), nil, 0, log)
	report, err := proc.RunCheck(ctx, "cli", profile)
	if err != nil {
		return err
	}
	outcome := domain.Performed(report)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	fmt.Println(outcome.Message)
	for _, m := range report.Matches {
		fmt.Printf("\n[%s] %s\n", m.RiskLevel.Label(), m.Name)
		fmt.Printf("  Why:      %s\n", m.Reason)
		fmt.Printf("  Deadline: %s\n", m.Deadline)
		fmt.Printf("  Penalty:  %s\n", m.PenaltyPreview)
	}
	return nil
}

func rulesCmd(args []string) error {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("rules validate", flag.ExitOnError)
		file := fs.String("file", "", "Rule pack YAML to validate")
		_ = fs.Parse(args[1:])
		if strings.TrimSpace(*file) == "" {
			return fmt.Errorf("--file is required")
		}

		table, err := rules.FileSource{Path: *file}.Load(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d rules OK\n", *file, table.Len())
		return nil
	case "export":
		b, err := rules.MarshalPack(rules.Default())
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(b)
		return err
	default:
		usage()
		os.Exit(2)
	}
	return nil
}
