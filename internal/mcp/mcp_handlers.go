package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Doubling-Open-Source/git-calculator/core"
	"github.com/Doubling-Open-Source/git-calculator/internal/contract"
	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg   *contract.Config
	mgr       contract.CacheManager
	histories *historyCache
}

// requestConfig clones the base config and applies the request arguments.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	tz := "UTC"
	if cfg.Location != nil {
		tz = cfg.Location.String()
	}
	input := &contract.ConfigRawInput{
		Ref:      request.GetString("ref", cfg.Ref),
		Strategy: request.GetString("strategy", string(cfg.Strategy)),
		By:       request.GetString("by", string(cfg.BucketMode)),
		Bucket:   request.GetInt("bucket", cfg.BucketSize),
		Source:   string(cfg.Source),
		Timezone: request.GetString("timezone", tz),
		Start:    request.GetString("start", ""),
		End:      request.GetString("end", ""),
	}
	if err := contract.RevalidateAnalysis(cfg, input); err != nil {
		return nil, err
	}
	cfg.ShowBranches = request.GetBool("branches", false)
	return cfg, nil
}

// run resolves the request config and history, then marshals the result of fn.
func (h *toolHandler) run(ctx context.Context, request mcp.CallToolRequest, fn func(*core.History, *contract.Config) (any, error)) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	history, err := h.histories.get(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}
	result, err := fn(history, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleBranchCycleTime(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run(ctx, request, func(history *core.History, cfg *contract.Config) (any, error) {
		return history.BranchStats(ctx, cfg)
	})
}

func (h *toolHandler) handleAuthorDeltas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run(ctx, request, func(history *core.History, cfg *contract.Config) (any, error) {
		return history.DeltaStats(cfg), nil
	})
}

func (h *toolHandler) handleMonthlyMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run(ctx, request, func(history *core.History, cfg *contract.Config) (any, error) {
		rows, err := history.Monthly(ctx, cfg)
		if err != nil {
			return nil, err
		}
		type labeled struct {
			schema.MonthlyRow
			Label string `json:"label"`
		}
		out := make([]labeled, len(rows))
		for i, r := range rows {
			out[i] = labeled{MonthlyRow: r, Label: contract.GetPlainLabel(r.FailureRate)}
		}
		return out, nil
	})
}

func (h *toolHandler) handleWeeklyAuthors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run(ctx, request, func(history *core.History, cfg *contract.Config) (any, error) {
		return history.WeeklyAuthors(cfg), nil
	})
}

func (h *toolHandler) handleBranchLines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.run(ctx, request, func(history *core.History, cfg *contract.Config) (any, error) {
		views, err := history.LineViews(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out := struct {
			Lines    []schema.LineView  `json:"lines"`
			Branches []schema.BranchRef `json:"branches,omitempty"`
		}{Lines: views}
		if cfg.ShowBranches {
			if out.Branches, err = core.BranchRefs(ctx, history.Source); err != nil {
				return nil, err
			}
		}
		return out, nil
	})
}
