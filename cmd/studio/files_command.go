package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var fileType string
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List files in the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			client, err := ctx.client(logger)
			if err != nil {
				return err
			}
			files, err := client.ListFiles(cmd.Context(), strings.TrimSpace(fileType))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No files")
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, file := range files {
				rows = append(rows, []string{
					file.Name,
					file.Directory,
					strconv.FormatInt(file.Size, 10),
					file.Modified.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(fileColumns, rows, fmt.Sprintf("%d files", len(rows))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&fileType, "type", "t", "", "Only list files with this extension")
	return cmd
}
