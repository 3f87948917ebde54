package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rajeev-qa/Kartavya-PMS-sub000/config"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/issues"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/projects"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/storage/postgres"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/users"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/domain"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/export"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/repository"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/service"
	"github.com/rajeev-qa/Kartavya-PMS-sub000/internal/workflows/templates"
)

var rootCmd = &cobra.Command{
	Use:   "kartavya-seed",
	Short: "Seed a demo project with a workflow, users and issues",
	RunE:  run,
}

func main() {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_NAME", "kartavya")
	viper.SetDefault("DB_SSLMODE", "disable")

	rootCmd.Flags().String("project", "Demo Project", "name of the project to create")
	rootCmd.Flags().String("template", "Agile", "workflow template to apply")
	rootCmd.Flags().String("file", "", "workflow document (yaml or json) to import instead of a template")

	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	projectName, _ := cmd.Flags().GetString("project")
	templateName, _ := cmd.Flags().GetString("template")
	file, _ := cmd.Flags().GetString("file")

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	db, err := postgres.NewConnection(&config.DatabaseConfig{
		Host:     viper.GetString("DB_HOST"),
		Port:     viper.GetInt("DB_PORT"),
		User:     viper.GetString("DB_USER"),
		Password: viper.GetString("DB_PASSWORD"),
		Name:     viper.GetString("DB_NAME"),
		SSLMode:  viper.GetString("DB_SSLMODE"),
	})
	if err != nil {
		return err
	}
	defer db.Close()

	in, err := workflowInput(templateName, file)
	if err != nil {
		return err
	}

	projectRepo := projects.NewRepo(db)
	userRepo := users.NewRepo(db)
	issueRepo := issues.NewRepo(db)

	project, err := projectRepo.Create(ctx, projectName)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	in.ProjectID = project.ID

	devID, err := userRepo.EnsureUser(ctx, users.UpsertUser{FirebaseUID: "seed-dev", Email: "dev@example.com", DisplayName: "Dev"})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	qaID, err := userRepo.EnsureUser(ctx, users.UpsertUser{FirebaseUID: "seed-qa", Email: "qa@example.com", DisplayName: "QA"})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	workflowSvc := service.NewWorkflowService(repository.NewWorkflowRepository(db), projectRepo)
	wf, warnings, err := workflowSvc.Create(ctx, in)
	if err != nil {
		return fmt.Errorf("create workflow: %w", err)
	}
	for _, w := range warnings {
		logrus.Warnf("workflow warning: %s", w)
	}

	assigneeSvc := service.NewAssigneeService(repository.NewDefaultAssigneeRepository(db), projectRepo, userRepo, issueRepo)
	for issueType, userID := range map[string]int64{"Bug": qaID, "Task": devID} {
		if _, err := assigneeSvc.Set(ctx, service.SetDefaultAssigneeInput{
			ProjectID:  project.ID,
			IssueType:  issueType,
			AssigneeID: domain.OptionalID{Set: true, Value: &userID},
		}); err != nil {
			return fmt.Errorf("default assignee for %s: %w", issueType, err)
		}
	}

	initial := wf.Statuses[0]
	for _, seed := range []struct{ title, issueType string }{
		{"Login page returns 500", "Bug"},
		{"Write onboarding guide", "Task"},
		{"Evaluate search provider", "Story"},
	} {
		issue, err := issueRepo.Create(ctx, project.ID, seed.title, seed.issueType, initial)
		if err != nil {
			return fmt.Errorf("create issue: %w", err)
		}
		res, err := assigneeSvc.Resolve(ctx, issue.ID)
		if err != nil {
			return fmt.Errorf("auto-assign issue %d: %w", issue.ID, err)
		}
		logrus.WithFields(logrus.Fields{"issue_id": issue.ID, "assigned": res.Assigned}).Info(res.Message)
	}

	logrus.WithFields(logrus.Fields{
		"project_id":  project.ID,
		"project_key": project.Key,
		"workflow_id": wf.ID,
	}).Info("seed complete")
	return nil
}

func workflowInput(templateName, file string) (service.CreateWorkflowInput, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return service.CreateWorkflowInput{}, err
		}
		doc, err := export.Parse(data)
		if err != nil {
			return service.CreateWorkflowInput{}, err
		}
		in := service.CreateWorkflowInput{
			Name:        doc.Name,
			Statuses:    doc.Statuses,
			Transitions: doc.Transitions,
		}
		if doc.Description != "" {
			in.Description = &doc.Description
		}
		return in, nil
	}

	tpl, ok := templates.Find(templateName)
	if !ok {
		return service.CreateWorkflowInput{}, fmt.Errorf("unknown template %q", templateName)
	}
	description := tpl.Description
	return service.CreateWorkflowInput{
		Name:        tpl.Name + " Workflow",
		Description: &description,
		Statuses:    tpl.Statuses,
		Transitions: tpl.Transitions,
	}, nil
}
