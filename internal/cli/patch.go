package cli

import (
	"fmt"

	"github.com/me/omicron/internal/subfile"
	"github.com/spf13/cobra"
)

func newPatchCmd() *cobra.Command {
	var image, arguments string

	cmd := &cobra.Command{
		Use:   "patch <file.sub>...",
		Short: "Inject argument and container overrides into submit descriptions",
		Long: "Rewrite each submit description in place. --arguments is prepended to the " +
			"existing arguments; --singularity-image adds +SingularityImage and a " +
			"HasSingularity requirement. Patching the same file twice is not detected.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := subfile.Overrides{Arguments: cfg.Arguments, SingularityImage: cfg.Image}
			if cmd.Flags().Changed("arguments") {
				o.Arguments = arguments
			}
			if cmd.Flags().Changed("singularity-image") {
				o.SingularityImage = image
			}
			if o.IsZero() {
				logger.Warn("no overrides given, leaving files unchanged")
				return nil
			}
			for _, path := range args {
				if err := subfile.PatchFile(path, o); err != nil {
					return fmt.Errorf("patch %s: %w", path, err)
				}
				logger.Info("patched submit file", "path", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&image, "singularity-image", "", "Container image path")
	cmd.Flags().StringVar(&arguments, "arguments", "", "Arguments to prepend")
	return cmd
}
