package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/bill-transformer/internal/server"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload and classify endpoints over HTTP",
	Long: `Serve starts an HTTP server:

  POST /convert?type=wechat|alipay&member=NAME   multipart field "file"
  GET  /classify?name=NAME&member=NAME
  GET  /formats
  GET  /healthz

/convert answers with the converted CSV as a download named custom_<name>.csv.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		srv := server.New(a.pipeline, server.Options{
			DefaultMember: a.cfg.DefaultMember,
			Members:       a.cfg.Members,
		}, a.log)
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
}
