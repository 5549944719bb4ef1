// cmd/tools/registry-check/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"lending-workers/internal/common/validation"
	"lending-workers/pkg/registry"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)

	validatePath := validateCmd.String("path", "", "Path to registry file (default: compiled-in registry)")
	listPath := listCmd.String("path", "", "Path to registry file (default: compiled-in registry)")
	checkPath := checkCmd.String("path", "", "Path to registry file (default: compiled-in registry)")
	taskType := checkCmd.String("taskType", "", "Task type whose input schema to check against")
	varsFile := checkCmd.String("vars", "", "JSON file with job variables")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		err = validate(*validatePath)
	case "list":
		listCmd.Parse(os.Args[2:])
		err = list(*listPath)
	case "check":
		checkCmd.Parse(os.Args[2:])
		if *taskType == "" || *varsFile == "" {
			fmt.Println("Error: taskType and vars are required for check.")
			checkCmd.Usage()
			os.Exit(1)
		}
		err = check(*checkPath, *taskType, *varsFile)
	case "help", "-h", "--help":
		help()
		return
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func load(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default(), nil
	}
	return registry.LoadRegistry(path)
}

// validate checks required fields, timeouts and that every input schema
// compiles.
func validate(path string) error {
	reg, err := load(path)
	if err != nil {
		return err
	}

	for _, a := range reg.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity %s missing required field: ID", a.TaskType)
		}
		if a.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", a.ID)
		}
		if a.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", a.ID)
		}
		if a.Timeout != "" && a.JobTimeout(0) == 0 {
			return fmt.Errorf("activity %s has invalid timeout %q", a.ID, a.Timeout)
		}
	}

	if _, err := validation.NewValidator(reg); err != nil {
		return err
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func list(path string) error {
	reg, err := load(path)
	if err != nil {
		return err
	}

	activities := append([]registry.Activity(nil), reg.Activities...)
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Category != activities[j].Category {
			return activities[i].Category < activities[j].Category
		}
		return activities[i].TaskType < activities[j].TaskType
	})

	for _, a := range activities {
		fmt.Printf("%-14s %-28s %-6s %s\n", a.Category, a.TaskType, a.Timeout, strings.Join(a.ErrorCodes, ","))
	}
	return nil
}

func check(path, taskType, varsFile string) error {
	reg, err := load(path)
	if err != nil {
		return err
	}
	if _, ok := reg.Lookup(taskType); !ok {
		return fmt.Errorf("unknown taskType %q", taskType)
	}

	v, err := validation.NewValidator(reg)
	if err != nil {
		return err
	}

	vars, err := os.ReadFile(varsFile)
	if err != nil {
		return err
	}

	res, err := v.ValidateVariables(taskType, string(vars))
	if err != nil {
		return err
	}
	if !res.Valid {
		for _, msg := range res.GetErrorMessages() {
			fmt.Println("  " + msg)
		}
		return fmt.Errorf("%d schema violations", len(res.Errors))
	}

	fmt.Printf("Variables are valid for %s.\n", taskType)
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-check <command> [flags]

Commands:
  validate  Validate the activity registry and compile its input schemas
  list      List registered activities by category
  check     Validate a job variables file against an activity input schema
  help      Show this help message

Examples:
  registry-check validate
  registry-check validate -path pkg/registry/activities.json
  registry-check check -taskType assess-loan-viability -vars application.json

Use 'registry-check <command> -h' for more information about a command.
` + "\n")
}
