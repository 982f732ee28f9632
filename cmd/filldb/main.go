package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/VtlBz/foodgram-project/data"
	"github.com/VtlBz/foodgram-project/internal/config"
	"github.com/VtlBz/foodgram-project/internal/database"
	"github.com/VtlBz/foodgram-project/internal/logging"
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	ingredientsFile = "ingredients.csv"
	tagsFile        = "tags.csv"
)

var (
	exitAnswers     = []string{"no", "n", "нет", "н", "q", "quit", "exit"}
	continueAnswers = []string{"yes", "y", "да", "д"}
)

var errCancelled = errors.New("operation cancelled by user")

func main() {
	var folder string
	flag.StringVar(&folder, "p", "", "folder containing ingredients.csv and optionally tags.csv")
	var embedded bool
	flag.BoolVar(&embedded, "embedded", false, "import the seed files compiled into the binary")
	var yes bool
	flag.BoolVar(&yes, "y", false, "do not ask for confirmation")
	flag.Parse()

	if folder == "" && !embedded {
		fmt.Fprintln(os.Stderr, "usage: filldb -p FOLDER | -embedded [-y]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Init(cfg)

	if !yes {
		if err := confirm(os.Stdin, os.Stdout); err != nil {
			logrus.Fatal(err)
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	sources, err := openSources(folder, embedded)
	if err != nil {
		logrus.Fatal(err)
	}
	if err := run(context.Background(), db, sources); err != nil {
		logrus.Fatal(err)
	}
	fmt.Println("Complete!")
}

// sources are the CSV readers to import. Tags may be nil.
type sources struct {
	ingredients io.Reader
	tags        io.Reader
}

func openSources(folder string, embedded bool) (sources, error) {
	if embedded {
		return sources{
			ingredients: strings.NewReader(data.SeedIngredients),
			tags:        strings.NewReader(data.SeedTags),
		}, nil
	}

	var src sources
	path, err := findFile(folder, ingredientsFile)
	if err != nil {
		return src, err
	}
	if path == "" {
		return src, fmt.Errorf("file %s does not exist in %s", ingredientsFile, folder)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return src, err
	}
	src.ingredients = strings.NewReader(string(content))

	path, err = findFile(folder, tagsFile)
	if err != nil {
		return src, err
	}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return src, err
		}
		src.tags = strings.NewReader(string(content))
	}
	return src, nil
}

// findFile returns the first file called name under folder, or "".
func findFile(folder, name string) (string, error) {
	var found string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", folder, err)
	}
	return found, nil
}

func run(ctx context.Context, db *gorm.DB, src sources) error {
	logrus.WithField("file", ingredientsFile).Info("Importing ingredients")
	stats, err := services.ImportIngredients(ctx, db, src.ingredients)
	if err != nil {
		return fmt.Errorf("%s: %w", ingredientsFile, err)
	}
	logrus.WithFields(logrus.Fields{
		"file":      ingredientsFile,
		"processed": stats.Processed,
		"created":   stats.Created,
	}).Info("Import finished")

	if src.tags == nil {
		return nil
	}
	logrus.WithField("file", tagsFile).Info("Importing tags")
	stats, err = services.ImportTags(ctx, db, src.tags)
	if err != nil {
		return fmt.Errorf("%s: %w", tagsFile, err)
	}
	logrus.WithFields(logrus.Fields{
		"file":      tagsFile,
		"processed": stats.Processed,
		"created":   stats.Created,
	}).Info("Import finished")
	return nil
}

// confirm asks until the answer is in continueAnswers or exitAnswers.
func confirm(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Данный скрипт импортирует данные из .csv файлов в базу данных проекта.")
	fmt.Fprintf(out, "%s --> ingredients, %s --> tags\n", ingredientsFile, tagsFile)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Подтвердить (yes/no)? ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errCancelled
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch {
		case contains(continueAnswers, answer):
			return nil
		case contains(exitAnswers, answer):
			return errCancelled
		}
		fmt.Fprintln(out, "Ошибка! Команда не распознана!")
		fmt.Fprintf(out, "Подтвердить и продолжить - %v\n", continueAnswers)
		fmt.Fprintf(out, "Отменить и выйти - %v\n", exitAnswers)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
