package evaltest

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"

	"github.com/dustincampbell/msbuild-eval/eval"
)

// Fixture is the YAML shape cmd/evalfmt reads, describing a whole
// project's properties, filesystem, and item elements in one file rather
// than constructing each eval.ItemElement by hand.
type Fixture struct {
	ProjectDirectory string            `yaml:"projectDirectory"`
	ProjectFullPath  string            `yaml:"projectFullPath"`
	Properties       map[string]string `yaml:"properties"`
	Files            []string          `yaml:"files"`
	Items            []FixtureItem     `yaml:"items"`
}

// FixtureItem is one <ItemType Include="..." .../> element in YAML form.
type FixtureItem struct {
	ItemType        string            `yaml:"itemType"`
	Kind            string            `yaml:"kind"` // "Include", "Remove", or "Update"
	Spec            string            `yaml:"spec"`
	Exclude         string            `yaml:"exclude"`
	Condition       string            `yaml:"condition"`
	MatchOnMetadata []string          `yaml:"matchOnMetadata"`
	KeepMetadata    bool              `yaml:"keepMetadata"`
	Metadata        map[string]string `yaml:"metadata"`
	File             string           `yaml:"file"`
	Line             int              `yaml:"line"`
}

// LoadFixture parses a fixture from raw YAML bytes.
func LoadFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("evaltest: parsing fixture: %w", err)
	}
	return &f, nil
}

// LoadFixtureFile reads and parses a fixture from path.
func LoadFixtureFile(path string) (*Fixture, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("evaltest: reading fixture %s: %w", path, err)
	}
	return LoadFixture(data)
}

// kindOf maps a fixture's textual kind to eval.OperationKind.
func kindOf(s string) (eval.OperationKind, error) {
	switch s {
	case "Include", "":
		return eval.OpInclude, nil
	case "Remove":
		return eval.OpRemove, nil
	case "Update":
		return eval.OpUpdate, nil
	default:
		return 0, fmt.Errorf("evaltest: unknown item element kind %q", s)
	}
}

// Elements converts every FixtureItem into an eval.ItemElement in file
// order, assigning each a Location built from its own File/Line (falling
// back to the fixture's ProjectFullPath when File is empty).
func (f *Fixture) Elements() ([]*eval.ItemElement, error) {
	elements := make([]*eval.ItemElement, 0, len(f.Items))
	for _, fi := range f.Items {
		kind, err := kindOf(fi.Kind)
		if err != nil {
			return nil, err
		}
		file := fi.File
		if file == "" {
			file = f.ProjectFullPath
		}
		el := &eval.ItemElement{
			ItemType:             fi.ItemType,
			Kind:                 kind,
			UnevaluatedSpec:      fi.Spec,
			UnevaluatedExclude:   fi.Exclude,
			UnevaluatedCondition: fi.Condition,
			MatchOnMetadata:      fi.MatchOnMetadata,
			KeepMetadata:         fi.KeepMetadata,
			Location:             eval.Location{File: file, Line: fi.Line},
		}
		for name, value := range fi.Metadata {
			el.Metadata = append(el.Metadata, eval.MetadataElement{Name: name, UnevaluatedValue: value})
		}
		elements = append(elements, el)
	}
	return elements, nil
}

// NewContext builds an *eval.Context wired to this package's in-memory fakes,
// seeded with the fixture's properties and file list — the collaborator
// graph cmd/evalfmt builds its evaluator against.
func (f *Fixture) NewContext() *eval.Context {
	ctx := eval.NewContext(nil)
	ctx.Properties = NewProperties(f.Properties)
	ctx.Metadata = NewMetadataTable("")
	ctx.Factory = Factory{}
	fs := NewFilesystem(f.Files...)
	fs.WorkingDirectory = f.ProjectDirectory
	ctx.Filesystem = fs
	ctx.PropertyFns = PropertyFunctions{}
	ctx.StringFns = StringMethods{}
	ctx.Conditions = Conditions{}
	return ctx
}
