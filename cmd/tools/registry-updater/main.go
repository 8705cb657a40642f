// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Ananya-0081/insightx-upi/pkg/registry"
)

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Activity ID (e.g., parse-query)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Parse Query)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category (query, analytics or insight)")
	taskType := addCmd.String("taskType", "", "Zeebe Task Type (e.g., parse-query)")
	version := addCmd.String("version", "1.0.0", "Version")
	implStatus := addCmd.String("status", "planned", "Implementation Status (planned, in-progress, completed, verified)")
	pathAdd := addCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
	value := updateCmd.String("value", "", "New value for the field")
	pathUpdate := updateCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	// Validate command flags
	pathValidate := validateCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *description == "" || *category == "" || *taskType == "" {
			fmt.Println("Error: id, displayName, description, category, and taskType are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		activity := registry.Activity{
			ID:                   *idAdd,
			DisplayName:          *displayName,
			Description:          *description,
			Category:             *category,
			Version:              *version,
			TaskType:             *taskType,
			ImplementationStatus: *implStatus,
			InputSchema:          map[string]interface{}{},
			OutputSchema:         map[string]interface{}{},
			ErrorCodes:           []string{},
			Timeout:              "10s",
			Retries:              0,
			Workflows:            []string{},
			Tags:                 []string{},
		}
		err := addActivity(&activity, *pathAdd)
		if err != nil {
			fmt.Printf("Error adding activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added activity: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err := updateActivity(*idUpdate, *field, *value, *pathUpdate)
		if err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err := validateRegistry(*pathValidate)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addActivity(activity *registry.Activity, path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.ActivityRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Activities:  []registry.Activity{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	if existing := reg.FindByID(activity.ID); existing != nil {
		return fmt.Errorf("activity with ID %s already exists", activity.ID)
	}

	reg.Activities = append(reg.Activities, *activity)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry would become invalid: %w", err)
	}

	return registry.SaveRegistry(reg, path)
}

func updateActivity(id, field, value, path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activity := reg.FindByID(id)
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "taskType":
		activity.TaskType = value
	case "timeout":
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)

	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry would become invalid: %w", err)
	}

	return registry.SaveRegistry(reg, path)
}

func validateRegistry(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	if err := reg.Validate(); err != nil {
		return err
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add     Add a new activity to the registry
  update  Update an existing activity's field
  validate Validate the registry file
  help    Show this help message

Examples:
  registry-updater add -id parse-query -displayName "Parse Query" -description "Classifies a natural-language question into a structured query" -category query -taskType parse-query
  registry-updater update -id parse-query -field status -value completed
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
