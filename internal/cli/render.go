package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/ohare93/devlink/internal/htmltmpl"
)

// RenderOptions holds the flags of the render command
type RenderOptions struct {
	HTMLAttrs   string
	BodyAttrs   string
	Head        string
	Element     string
	Hydration   string
	Interpolate bool
	Output      string
}

var renderOpts RenderOptions

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render an HTML document template",
	Long: `Compile an HTML document the way the framework does at build time and
render it once. The first bare <html> and <body> tags receive the attribute
strings given by --html-attrs and --body-attrs.

With --interpolate, ${head}, ${element}, ${hydration} and ${extra.<key>}
expressions are filled in as well.

Examples:
  devlink render index.html --html-attrs ' lang="en"'
  devlink render index.html --interpolate --head '<title>Home</title>' -o out.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	var opts []htmltmpl.Option
	if renderOpts.Interpolate {
		opts = append(opts, htmltmpl.WithInterpolation())
	}
	tmpl, err := htmltmpl.Compile(string(source), opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	data := htmltmpl.Data{
		Attrs:   htmltmpl.Attrs{HTML: renderOpts.HTMLAttrs, Body: renderOpts.BodyAttrs},
		Head:    renderOpts.Head,
		Element: renderOpts.Element,
	}
	if renderOpts.Hydration != "" {
		data.Hydration = renderOpts.Hydration
	}

	out, err := htmltmpl.Render(cmd.Context(), tmpl, data, htmltmpl.Helpers{})
	if err != nil {
		return err
	}

	if renderOpts.Output == "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}
	if err := atomic.WriteFile(renderOpts.Output, bytes.NewReader([]byte(out))); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func init() {
	renderCmd.Flags().StringVar(&renderOpts.HTMLAttrs, "html-attrs", "", "Attribute string for the <html> tag")
	renderCmd.Flags().StringVar(&renderOpts.BodyAttrs, "body-attrs", "", "Attribute string for the <body> tag")
	renderCmd.Flags().StringVar(&renderOpts.Head, "head", "", "Value for ${head} (with --interpolate)")
	renderCmd.Flags().StringVar(&renderOpts.Element, "element", "", "Value for ${element} (with --interpolate)")
	renderCmd.Flags().StringVar(&renderOpts.Hydration, "hydration", "", "Value for ${hydration} (with --interpolate)")
	renderCmd.Flags().BoolVar(&renderOpts.Interpolate, "interpolate", false, "Expand ${...} expressions")
	renderCmd.Flags().StringVarP(&renderOpts.Output, "output", "o", "", "Write to file instead of stdout")
}
