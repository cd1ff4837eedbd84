// Copyright 2025 James Ross

// Command launcherctl is a thin CLI client for a running launcherd's
// rpcserver HTTP API, intended for manual testing and operations rather
// than as the production front-end integration surface.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	version      = "dev"
	serverAddr   string
	globalClient *rpcClient
)

// rpcClient wraps an HTTP client bound to a running launcherd's rpcserver.
type rpcClient struct {
	baseURL string
	http    *http.Client
}

func newRPCClient(baseURL string) *rpcClient {
	return &rpcClient{baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
}

func (c *rpcClient) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connecting to launcherd at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("launcherd error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("launcherd error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func printJSON(raw []byte) {
	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		fmt.Println(pretty.String())
		return
	}
	fmt.Println(string(raw))
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "launcherctl",
		Short:   "CLI client for a running launcherd's rpcserver",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			globalClient = newRPCClient(serverAddr)
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "http://127.0.0.1:7463", "launcherd rpcserver address")

	rootCmd.AddCommand(newPingCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newRunActionCmd())
	rootCmd.AddCommand(newPluginsCmd())
	rootCmd.AddCommand(newPreferencesCmd())
	rootCmd.AddCommand(newDownloadCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "check that launcherd is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := globalClient.do(cmd.Context(), http.MethodGet, "/api/v1/ping", nil)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}
}

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "fetch the initial UI bootstrap snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := globalClient.do(cmd.Context(), http.MethodGet, "/api/v1/setup", nil)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}
}

func newSearchCmd() *cobra.Command {
	var renderInline bool
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "run a search query against the launcher's index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := globalClient.do(cmd.Context(), http.MethodPost, "/api/v1/search", map[string]interface{}{
				"text":               args[0],
				"render_inline_view": renderInline,
			})
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}
	cmd.Flags().BoolVar(&renderInline, "render-inline-view", false, "also re-render live inline-view plugins")
	return cmd
}

func newRunActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-action <plugin-id> <entrypoint-id> <action-id>",
		Short: "invoke a plugin entrypoint action",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := globalClient.do(cmd.Context(), http.MethodPost, "/api/v1/run-action", map[string]string{
				"plugin_id":     args[0],
				"entrypoint_id": args[1],
				"action_id":     args[2],
			})
			return err
		},
	}
	return cmd
}

func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "manage installed plugins",
	}
	cmd.AddCommand(newPluginStateCmd())
	return cmd
}

func newPluginStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <plugin-id> <true|false>",
		Short: "enable or disable a plugin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := globalClient.do(cmd.Context(), http.MethodPost, "/api/v1/plugins/state", map[string]interface{}{
				"plugin_id": args[0],
				"enabled":   args[1] == "true",
			})
			return err
		},
	}
}

func newPreferencesCmd() *cobra.Command {
	var entrypointID string
	cmd := &cobra.Command{
		Use:   "set-preference <plugin-id> <name> <json-value>",
		Short: "set a plugin or entrypoint preference value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := globalClient.do(cmd.Context(), http.MethodPost, "/api/v1/preferences", map[string]interface{}{
				"plugin_id":     args[0],
				"entrypoint_id": entrypointID,
				"name":          args[1],
				"value":         json.RawMessage(args[2]),
			})
			return err
		},
	}
	cmd.Flags().StringVar(&entrypointID, "entrypoint", "", "entrypoint id, for an entrypoint-level preference")
	return cmd
}

func newDownloadCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "download <repo-url>",
		Short: "download and install a plugin from a git repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := globalClient.do(cmd.Context(), http.MethodPost, "/api/v1/plugins/download", map[string]string{
				"repo_url": args[0],
				"token":    token,
			})
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "auth token for private repositories")
	return cmd
}
