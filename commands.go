package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"recipebox/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved recipes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		printList(cmd.OutOrStdout(), a.recipes.ReadAll(cmd.Context()))
		return nil
	},
}

var addPayload struct {
	title, time, difficulty, ingredients, instructions string
	dryRun                                             bool
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new recipe",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := models.RecipePayload{
			Title:        addPayload.title,
			Time:         &addPayload.time,
			Difficulty:   &addPayload.difficulty,
			Ingredients:  &addPayload.ingredients,
			Instructions: &addPayload.instructions,
		}.Normalize()
		if addPayload.dryRun {
			printPreview(cmd.OutOrStdout(), payload)
			return nil
		}
		if err := payload.Validate(); err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		created, ok := a.recipes.Append(cmd.Context(), payload)
		if !ok {
			return errors.New("could not save the recipe, try again")
		}
		fmt.Fprintln(cmd.OutOrStdout(), created.ID)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recipe in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		for _, r := range a.recipes.ReadAll(cmd.Context()) {
			if r.ID == args[0] {
				printRecipe(cmd.OutOrStdout(), r)
				return nil
			}
		}
		return fmt.Errorf("no recipe with id %q", args[0])
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Report how many recipes are saved",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		n := len(a.recipes.ReadAll(cmd.Context()))
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved recipes yet.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "You have %d saved recipe(s).\n", n)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved recipe",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		a.recipes.Clear(cmd.Context())
		return nil
	},
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addPayload.title, "title", "", "recipe title (required)")
	f.StringVar(&addPayload.time, "time", "", "preparation time, e.g. \"45 min\"")
	f.StringVar(&addPayload.difficulty, "difficulty", "", "difficulty, e.g. \"easy\"")
	f.StringVar(&addPayload.ingredients, "ingredients", "", "ingredients, one per line")
	f.StringVar(&addPayload.instructions, "instructions", "", "step-by-step instructions")
	f.BoolVar(&addPayload.dryRun, "dry-run", false, "print the title and instructions as they would be saved, without saving")
}

// printPreview shows what add would store. Nothing is validated.
func printPreview(w io.Writer, p models.RecipePayload) {
	title := p.Title
	if title == "" {
		title = "(no title)"
	}
	instructions := models.Value(p.Instructions)
	if instructions == "" {
		instructions = "(no instructions)"
	}
	fmt.Fprintf(w, "%s\n\n%s\n", title, instructions)
}

func printList(w io.Writer, recipes []models.Recipe) {
	if len(recipes) == 0 {
		fmt.Fprintln(w, "No saved recipes yet.")
		return
	}
	for _, r := range recipes {
		parts := []string{r.Title}
		if r.Time != nil {
			parts = append(parts, *r.Time)
		}
		if r.Difficulty != nil {
			parts = append(parts, *r.Difficulty)
		}
		fmt.Fprintf(w, "%s\t%s\n", r.ID, strings.Join(parts, " · "))
	}
}

func printRecipe(w io.Writer, r models.Recipe) {
	fmt.Fprintln(w, r.Title)
	if r.Time != nil {
		fmt.Fprintf(w, "Time: %s\n", *r.Time)
	}
	if r.Difficulty != nil {
		fmt.Fprintf(w, "Difficulty: %s\n", *r.Difficulty)
	}
	if r.Ingredients != nil {
		fmt.Fprintf(w, "\nIngredients:\n%s\n", *r.Ingredients)
	}
	if r.Instructions != nil {
		fmt.Fprintf(w, "\nInstructions:\n%s\n", *r.Instructions)
	}
}
