package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/lexis/internal/resource"
)

const wordOfDayURI = "lexis://word-of-the-day"

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Resolver  Resolver
	Favorites FavoriteManager
	Recent    RecentManager
	Slot      WordOfDay
}

// NewMCPServer creates an MCP server with all lexis tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"lexis",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("lexis: English dictionary lookups with personal favorites, search history and a daily word."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("lookup_word",
			mcp.WithDescription("Look up an English word. Favorited words are answered locally, others from the online dictionary."),
			mcp.WithString("word", mcp.Description("Word to look up"), mcp.Required()),
			mcp.WithBoolean("record", mcp.Description("Add the word to the search history (default true)")),
		),
		mcpLookupWord(deps),
	)

	s.AddTool(
		mcp.NewTool("like_word",
			mcp.WithDescription("Look up a word and save all of its entries as favorites."),
			mcp.WithString("word", mcp.Description("Word to favorite"), mcp.Required()),
		),
		mcpLikeWord(deps),
	)

	s.AddTool(
		mcp.NewTool("unlike_word",
			mcp.WithDescription("Remove words from the favorites."),
			mcp.WithArray("words", mcp.Description("Words to remove"), mcp.Required(), mcp.WithStringItems()),
		),
		mcpUnlikeWord(deps),
	)

	s.AddTool(
		mcp.NewTool("list_favorites",
			mcp.WithDescription("List favorite words, optionally filtered by prefix."),
			mcp.WithString("prefix", mcp.Description("Case-insensitive prefix filter")),
		),
		mcpListFavorites(deps),
	)

	s.AddTool(
		mcp.NewTool("list_recent",
			mcp.WithDescription("List recently looked up words, newest first."),
			mcp.WithString("prefix", mcp.Description("Case-insensitive prefix filter")),
		),
		mcpListRecent(deps),
	)

	s.AddTool(
		mcp.NewTool("clear_recent",
			mcp.WithDescription("Delete one word from the search history, or all of it when no word is given."),
			mcp.WithString("word", mcp.Description("Word to delete; omit to clear the history")),
		),
		mcpClearRecent(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			wordOfDayURI,
			"Word of the Day",
			mcp.WithResourceDescription("The latest word of the day and its first definition"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceWordOfDay(deps),
	)

	return s
}

func mcpLookupWord(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		word, err := req.RequireString("word")
		if err != nil || strings.TrimSpace(word) == "" {
			return mcpError("word is required"), nil
		}
		record := req.GetBool("record", true)

		infos, err := resource.Collect(deps.Resolver.Resolve(ctx, word, record))
		if err != nil {
			return mcpError(fmt.Sprintf("lookup failed (%s): %v", resource.KindOf(err), err)), nil
		}
		return mcpJSON(infos)
	}
}

func mcpLikeWord(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		word, err := req.RequireString("word")
		if err != nil || strings.TrimSpace(word) == "" {
			return mcpError("word is required"), nil
		}

		infos, err := resource.Collect(deps.Resolver.ResolveExact(ctx, word, false))
		if err != nil {
			return mcpError(fmt.Sprintf("lookup failed (%s): %v", resource.KindOf(err), err)), nil
		}
		if _, err := resource.Collect(deps.Favorites.Like(ctx, infos)); err != nil {
			return mcpError(fmt.Sprintf("failed to save favorite: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Liked %s (%d entries)", strings.TrimSpace(word), len(infos))), nil
	}
}

func mcpUnlikeWord(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		words := req.GetStringSlice("words", nil)
		if len(words) == 0 {
			return mcpError("words is required"), nil
		}
		if _, err := resource.Collect(deps.Favorites.Unlike(ctx, words)); err != nil {
			return mcpError(fmt.Sprintf("failed to remove favorites: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Unliked %s", strings.Join(words, ", "))), nil
	}
}

func mcpListFavorites(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		words, err := resource.Collect(deps.Favorites.List(ctx, req.GetString("prefix", "")))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list favorites: %v", err)), nil
		}
		return mcpJSON(nonNil(words))
	}
}

func mcpListRecent(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		words, err := resource.Collect(deps.Recent.List(ctx, req.GetString("prefix", "")))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list recent words: %v", err)), nil
		}
		return mcpJSON(nonNil(words))
	}
}

func mcpClearRecent(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		word := strings.TrimSpace(req.GetString("word", ""))
		if _, err := resource.Collect(deps.Recent.Delete(ctx, word)); err != nil {
			return mcpError(fmt.Sprintf("failed to clear history: %v", err)), nil
		}
		if word == "" {
			return mcpText("Cleared search history"), nil
		}
		return mcpText(fmt.Sprintf("Removed %s from search history", word)), nil
	}
}

func mcpResourceWordOfDay(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p, err := deps.Slot.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to read word of the day: %w", err)
		}

		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal word of the day: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
