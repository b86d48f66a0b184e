// Command evalfmt loads a YAML project fixture, runs it through the
// evaluator, and prints the resulting item set one line per item — a tiny
// smoke-test CLI that drives the engine end to end against a fixture file
// instead of a live server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dustincampbell/msbuild-eval/eval"
	"github.com/dustincampbell/msbuild-eval/eval/evaltest"
	msbuildeval "github.com/dustincampbell/msbuild-eval"
)

func main() {
	verbose := flag.Bool("v", false, "log diagnostics of every importance, Low included")
	itemType := flag.String("type", "", "print only items of this type")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: evalfmt [-v] [-type ItemType] <fixture.yaml>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *itemType, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "evalfmt:", err)
		os.Exit(1)
	}
}

func run(path, itemType string, verbose bool) error {
	fixture, err := evaltest.LoadFixtureFile(path)
	if err != nil {
		return err
	}

	ctx := fixture.NewContext()
	if verbose {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		ctx.Diagnostic = eval.NewLogrusDiagnostic(logger, ctx.ID)
	}

	ev := msbuildeval.NewEvaluator(ctx, fixture.ProjectDirectory, fixture.ProjectFullPath)

	elements, err := fixture.Elements()
	if err != nil {
		return err
	}
	for _, el := range elements {
		if err := ev.AddElement(el); err != nil {
			return err
		}
	}

	var items []*eval.Item
	if itemType != "" {
		items = ev.ItemsOfType(itemType)
	} else {
		items, err = ev.Evaluate()
		if err != nil {
			return err
		}
	}

	for _, it := range items {
		fmt.Printf("%s\t%s\n", it.ItemType, it.EvaluatedInclude)
	}
	return nil
}
