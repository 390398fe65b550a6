// member-check：拉取并解析成员表格，输出统计、被拒绝行、标签与国家；供表格维护者在发布前自查
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chapter-map/internal/config"
	"chapter-map/internal/logger"
)

func main() {
	config.LoadDotEnv()
	logger.Setup()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "member-check",
		Short:         "Validate the published member spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCheckCmd(), newLoadsCmd())
	return root
}
