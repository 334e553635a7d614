// Command mustache renders or lints Mustache templates from the command
// line.
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"

	"github.com/gotemplates/mustache"
)

var (
	layoutFile   string
	overrideFile string
)

var rootCmd = &cobra.Command{
	Use:   "mustache",
	Short: "Render or lint Mustache templates",
}

var renderCmd = &cobra.Command{
	Use:   "render [data.yml] template.mustache",
	Short: "Render a template against a YAML data file or stdin",
	Example: `  mustache render data.yml template.mustache
  cat data.yml | mustache render template.mustache
  mustache render --layout wrapper.mustache data.yml template.mustache`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRender,
}

var lintCmd = &cobra.Command{
	Use:   "lint template.mustache",
	Short: "Parse a template and report syntax errors without rendering it",
	Args:  cobra.ExactArgs(1),
	RunE:  runLint,
}

func main() {
	renderCmd.Flags().StringVar(&layoutFile, "layout", "", "location of layout template")
	renderCmd.Flags().StringVar(&overrideFile, "override", "", "location of a YAML file whose keys override the data file")
	rootCmd.AddCommand(renderCmd, lintCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	var data interface{}
	var templatePath string
	if len(args) == 1 {
		var err error
		data, err = decodeYAMLReader(os.Stdin)
		if err != nil {
			return err
		}
		templatePath = args[0]
	} else {
		var err error
		data, err = decodeYAMLFile(args[0])
		if err != nil {
			return err
		}
		templatePath = args[1]
	}

	if overrideFile != "" {
		override, err := decodeYAMLFile(overrideFile)
		if err != nil {
			return err
		}
		mergeYAMLMaps(data, override)
	}

	compiler := mustache.New().WithPartials(&mustache.FileProvider{})

	tmpl, err := compiler.CompileFile(templatePath)
	if err != nil {
		return err
	}

	var output string
	if layoutFile != "" {
		layout, err := compiler.CompileFile(layoutFile)
		if err != nil {
			return err
		}
		output, err = tmpl.RenderInLayout(layout, data)
		if err != nil {
			return err
		}
	} else {
		output, err = tmpl.Render(data)
		if err != nil {
			return err
		}
	}

	fmt.Print(output)
	return nil
}

func runLint(cmd *cobra.Command, args []string) error {
	_, err := mustache.New().CompileFile(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s: ok\n", args[0])
	return nil
}

func decodeYAMLReader(r *os.File) (interface{}, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var data interface{}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func decodeYAMLFile(path string) (interface{}, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data interface{}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// mergeYAMLMaps copies every key from override into data in place, when both
// decoded to yaml.v2's native map[interface{}]interface{} shape.
func mergeYAMLMaps(data, override interface{}) {
	dm, ok := data.(map[interface{}]interface{})
	if !ok {
		return
	}
	om, ok := override.(map[interface{}]interface{})
	if !ok {
		return
	}
	for k, v := range om {
		dm[k] = v
	}
}
