package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/bookjournal/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	cli := &CLI{}
	parser, err := newParser(cli, kong.Exit(func(code int) {
		t.Fatalf("unexpected Kong exit %d", code)
	}))
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, ctx
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = orig })
	return &buf
}

func TestCommandParsing(t *testing.T) {
	cli, ctx := parseCLI(t, "add", "Dune", "Frank Herbert", "--level", "academic")
	assert.Equal(t, "add <title> <author>", ctx.Command())
	assert.Equal(t, "Dune", cli.Add.Title)
	assert.Equal(t, "Frank Herbert", cli.Add.Author)
	assert.Equal(t, "academic", cli.Add.Level)

	cli, _ = parseCLI(t, "add", "Dune", "Frank Herbert")
	assert.Equal(t, "moderate", cli.Add.Level)

	cli, _ = parseCLI(t, "edit", "abc", "--title", "Dune Messiah")
	assert.Equal(t, "abc", cli.Edit.ID)
	require.NotNil(t, cli.Edit.Title)
	assert.Equal(t, "Dune Messiah", *cli.Edit.Title)
	assert.Nil(t, cli.Edit.Author)
	assert.Nil(t, cli.Edit.Level)

	cli, _ = parseCLI(t, "rate", "abc", "-r", "4")
	require.NotNil(t, cli.Rate.Rating)
	assert.Equal(t, 4, *cli.Rate.Rating)
	assert.Nil(t, cli.Rate.Notes)

	cli, _ = parseCLI(t, "--strict", "--debug", "list", "--status", "finished")
	assert.True(t, cli.Strict)
	assert.True(t, cli.Debug)
	assert.Equal(t, "finished", cli.List.Status)

	cli, _ = parseCLI(t, "export", "-f", "yaml", "-o", "books.yaml")
	assert.Equal(t, "yaml", cli.Export.Format)

	cli, ctx = parseCLI(t, "cache", "clear", "--expired")
	assert.Equal(t, "cache clear", ctx.Command())
	assert.True(t, cli.Cache.Clear.Expired)

	_, ctx = parseCLI(t, "tbr", "abc")
	assert.Equal(t, "tbr <id>", ctx.Command())
}

func TestCommandParsing_RejectsUnknownLevel(t *testing.T) {
	parser, err := newParser(&CLI{}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"add", "Dune", "Herbert", "--level", "hard"})
	assert.Error(t, err)
}

func TestInitConfig_DefaultsWithoutFile(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.Chdir(".")

	require.NoError(t, initConfig(""))
	assert.Equal(t, "books", viper.GetString("remote.resource"))
	assert.Equal(t, "./bookjournal.db", viper.GetString("storage.local_db"))
}

func TestInitConfig_ConfigFileAndEnvironment(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.WriteFileString("journal.yaml", "remote:\n  url: https://kv.example.com\n  resource: shelf\ncovers:\n  size: L\n")
	env.SetEnv("BOOKJOURNAL_REMOTE_RESOURCE", "from-env")

	require.NoError(t, initConfig(env.Path("journal.yaml")))

	assert.Equal(t, "https://kv.example.com", viper.GetString("remote.url"))
	assert.Equal(t, "from-env", viper.GetString("remote.resource"))
	assert.Equal(t, "L", viper.GetString("covers.size"))
}

func TestInitConfig_DotEnv(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.WriteFileString(".env", "BOOKJOURNAL_SERVER_TOKEN=dotenv-token\n")
	env.Chdir(".")
	t.Cleanup(func() { _ = os.Unsetenv("BOOKJOURNAL_SERVER_TOKEN") })

	require.NoError(t, initConfig(""))
	assert.Equal(t, "dotenv-token", viper.GetString("server.token"))
}

func TestInitConfig_MissingExplicitFile(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)

	assert.Error(t, initConfig(env.Path("missing.yaml")))
}

func TestApplyFlags(t *testing.T) {
	testutil.ResetConfig(t)

	applyFlags(&CLI{})
	assert.False(t, viper.GetBool("journal.strict"))

	applyFlags(&CLI{Strict: true})
	assert.True(t, viper.GetBool("journal.strict"))
}

func TestInitLogging(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	for _, value := range []string{"", "debug", "WARN", "error", "invalid"} {
		t.Run("level "+value, func(t *testing.T) {
			t.Setenv("BOOKJOURNAL_LOG_LEVEL", value)
			require.NotPanics(t, func() {
				initLogging(false)
			})
		})
	}

	initLogging(true)
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("loud"))
}
