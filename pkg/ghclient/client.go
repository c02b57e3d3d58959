// Package ghclient is a minimal GitHub REST client, grounded on zizmor's
// src/github_api.rs: enough surface for the online audits
// (impostor-commit, ref-version-mismatch) to list branches/tags, resolve a ref to a commit, compare commits, look
// up GHSA advisories, and walk a repository's workflows/actions over the
// REST contents API. Requests go through go-github's typed Client
// (grounded on esacteksab-gh-actlock/githubclient), layered on the
// teacher's rate limiting and HTTP plumbing on top of a disk-backed
// response cache, matching the original's per-user, non-shared HTTP
// cache.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/google/go-github/v80/github"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"golang.org/x/oauth2"

	"github.com/wflint/wflint/pkg/gitutil"
	"github.com/wflint/wflint/pkg/httputil"
	"github.com/wflint/wflint/pkg/logger"
	"github.com/wflint/wflint/pkg/ratelimit"
)

var log = logger.New("ghclient:client")

// Client is a minimal, rate-limited, disk-cached GitHub REST client,
// wrapping go-github's typed Client.
type Client struct {
	gh *github.Client
}

// rateLimitedTransport gates every outgoing request on the teacher's
// ratelimit package before handing it to base, regardless of whether the
// request ultimately hits the network or is served from the disk cache
// beneath it — matching the original client's unconditional per-request
// pacing.
type rateLimitedTransport struct {
	base http.RoundTripper
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := ratelimit.Wait(req.Context(), ratelimit.OperationGitHubAPI); err != nil {
		return nil, fmt.Errorf("ghclient: rate limit wait: %w", err)
	}
	return t.base.RoundTrip(req)
}

// NewClient builds a Client for host (e.g. "github.com" or a GitHub
// Enterprise hostname), authenticating with token and caching responses
// under cacheDir. An empty token builds an unauthenticated client, which
// GitHub rate-limits far more aggressively.
func NewClient(host, token, cacheDir string) (*Client, error) {
	cache := diskcache.New(cacheDir)

	transport := &httpcache.Transport{
		Cache: cache,
		// GitHub responses to authenticated requests carry
		// `Cache-Control: private`; httpcache's shared-cache default would
		// otherwise refuse to store them.
		MarkCachedResponses: true,
	}

	var base http.RoundTripper = transport
	if token != "" {
		base = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   transport,
		}
	}

	httpClient := &http.Client{
		Transport: &rateLimitedTransport{base: base},
		Timeout:   httputil.DefaultTimeout,
	}

	gh := github.NewClient(httpClient)
	gh.UserAgent = httputil.DefaultUserAgent
	if host != "" && host != "github.com" {
		enterprise, err := gh.WithEnterpriseURLs(
			fmt.Sprintf("https://%s/api/v3/", host),
			fmt.Sprintf("https://%s/api/uploads/", host),
		)
		if err != nil {
			return nil, fmt.Errorf("ghclient: configure enterprise host %q: %w", host, err)
		}
		gh = enterprise
	}

	return &Client{gh: gh}, nil
}

// NewWithHTTPClient builds a Client that talks to apiBase using httpClient
// directly, bypassing caching, rate limiting, and auth — for tests in other
// packages that need to point a Client at an httptest.Server.
func NewWithHTTPClient(apiBase string, httpClient *http.Client) *Client {
	gh := github.NewClient(httpClient)
	if u, err := url.Parse(apiBase + "/"); err == nil {
		gh.BaseURL = u
	}
	return &Client{gh: gh}
}

// isNotFound reports whether err is a go-github error carrying a 404
// response, grounded on esacteksab-gh-actlock/githubclient/resolver.go's
// isNotFoundError.
func isNotFound(resp *github.Response, err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && resp != nil && resp.StatusCode == http.StatusNotFound
}

// wrapErr classifies a failed go-github call, special-casing a 403 that
// looks like an authentication problem so callers don't have to guess
// whether their token is simply under-scoped.
func wrapErr(resp *github.Response, err error, context string) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && resp != nil && resp.StatusCode == http.StatusForbidden {
		if gitutil.IsAuthError(ghErr.Message) {
			return fmt.Errorf("%s: request forbidden, token looks invalid or unauthorized: %w", context, err)
		}
		return fmt.Errorf("%s: request forbidden (token permissions may be insufficient): %w", context, err)
	}
	return fmt.Errorf("%s: %w", context, err)
}

// ListBranches lists every branch of owner/repo.
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]Branch, error) {
	opts := &github.BranchListOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var out []Branch
	for {
		branches, resp, err := c.gh.Repositories.ListBranches(ctx, owner, repo, opts)
		if err != nil {
			return out, wrapErr(resp, err, "ghclient: list branches")
		}
		for _, b := range branches {
			out = append(out, Branch{
				Name:      b.GetName(),
				Commit:    Object{SHA: b.GetCommit().GetSHA()},
				Protected: b.GetProtected(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// ListTags lists every tag of owner/repo.
func (c *Client) ListTags(ctx context.Context, owner, repo string) ([]Tag, error) {
	opts := &github.ListOptions{PerPage: 100}
	var out []Tag
	for {
		tags, resp, err := c.gh.Repositories.ListTags(ctx, owner, repo, opts)
		if err != nil {
			return out, wrapErr(resp, err, "ghclient: list tags")
		}
		for _, t := range tags {
			out = append(out, Tag{
				Name:   t.GetName(),
				Commit: Object{SHA: t.GetCommit().GetSHA()},
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// HasBranch reports whether owner/repo has a branch named branch.
func (c *Client) HasBranch(ctx context.Context, owner, repo, branch string) (bool, error) {
	_, ok, err := c.gitRefSHA(ctx, owner, repo, "heads", branch)
	return ok, err
}

// HasTag reports whether owner/repo has a tag named tag.
func (c *Client) HasTag(ctx context.Context, owner, repo, tag string) (bool, error) {
	_, ok, err := c.gitRefSHA(ctx, owner, repo, "tags", tag)
	return ok, err
}

func (c *Client) gitRefSHA(ctx context.Context, owner, repo, kind, ref string) (string, bool, error) {
	gitRef, resp, err := c.gh.Git.GetRef(ctx, owner, repo, fmt.Sprintf("refs/%s/%s", kind, ref))
	if err != nil {
		if isNotFound(resp, err) {
			return "", false, nil
		}
		return "", false, wrapErr(resp, err, "ghclient: resolve ref")
	}
	return gitRef.GetObject().GetSHA(), true, nil
}

// CommitForRef resolves gitRef (a branch or tag name) to a commit SHA,
// trying branches before tags since that's the order GitHub Actions itself
// resolves a `uses: owner/repo@ref`. It returns ("", false, nil) if gitRef
// names neither.
func (c *Client) CommitForRef(ctx context.Context, owner, repo, gitRef string) (string, bool, error) {
	if sha, ok, err := c.gitRefSHA(ctx, owner, repo, "heads", gitRef); err != nil || ok {
		return sha, ok, err
	}
	return c.gitRefSHA(ctx, owner, repo, "tags", gitRef)
}

// LongestTagForCommit downloads every tag of owner/repo and returns the
// longest one pointing at commit, since GitHub's API has no commit->tag
// lookup. Ties are broken by returning the last longest match encountered,
// matching the original's `max_by_key` (Rust's Iterator::max_by_key
// returns the last of equal-maximum elements).
func (c *Client) LongestTagForCommit(ctx context.Context, owner, repo, commit string) (Tag, bool, error) {
	tags, err := c.ListTags(ctx, owner, repo)
	if err != nil {
		return Tag{}, false, fmt.Errorf("ghclient: list tags for %s/%s@%s: %w", owner, repo, commit, err)
	}

	var matches []Tag
	for _, t := range tags {
		if t.Commit.SHA == commit {
			matches = append(matches, t)
		}
	}
	if len(matches) == 0 {
		return Tag{}, false, nil
	}
	sort.SliceStable(matches, func(i, j int) bool { return len(matches[i].Name) < len(matches[j].Name) })
	return matches[len(matches)-1], true, nil
}

// CompareCommits compares base..head and returns the comparison status, or
// ("", false, nil) if either commit is unknown to GitHub.
func (c *Client) CompareCommits(ctx context.Context, owner, repo, base, head string) (ComparisonStatus, bool, error) {
	cmp, resp, err := c.gh.Repositories.CompareCommits(ctx, owner, repo, base, head, nil)
	if err != nil {
		if isNotFound(resp, err) {
			return "", false, nil
		}
		return "", false, wrapErr(resp, err, "ghclient: compare commits")
	}
	return ComparisonStatus(cmp.GetStatus()), true, nil
}

// GHAAdvisories queries GitHub's security advisories for the "actions"
// ecosystem affecting owner/repo@version.
func (c *Client) GHAAdvisories(ctx context.Context, owner, repo, version string) ([]Advisory, error) {
	opts := &github.ListGlobalSecurityAdvisoriesOptions{
		Ecosystem: github.Ptr("actions"),
		Affects:   github.Ptr(fmt.Sprintf("%s/%s@%s", owner, repo, version)),
	}
	advisories, resp, err := c.gh.SecurityAdvisories.ListGlobalSecurityAdvisories(ctx, opts)
	if err != nil {
		return nil, wrapErr(resp, err, fmt.Sprintf("ghclient: fetch advisories for %s/%s@%s", owner, repo, version))
	}

	out := make([]Advisory, 0, len(advisories))
	for _, a := range advisories {
		out = append(out, Advisory{
			GHSAID:      a.GetGHSAID(),
			Severity:    a.GetSeverity(),
			Summary:     a.GetSummary(),
			HTMLURL:     a.GetHTMLURL(),
			Description: a.GetDescription(),
		})
	}
	return out, nil
}

// FetchWorkflowFile fetches the raw contents of a single file at path
// within owner/repo at ref (empty ref means the default branch), used to
// pull a single workflow or action file for remote auditing.
func (c *Client) FetchWorkflowFile(ctx context.Context, owner, repo, filePath, ref string) (string, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, filePath, opts)
	if err != nil {
		return "", wrapErr(resp, err, fmt.Sprintf("ghclient: fetch %s/%s/%s", owner, repo, filePath))
	}
	if file == nil {
		return "", fmt.Errorf("ghclient: %s/%s/%s is a directory, not a file", owner, repo, filePath)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("ghclient: decode content of %s/%s/%s: %w", owner, repo, filePath, err)
	}
	return content, nil
}

// ListWorkflowFiles lists the `.yml`/`.yaml` files under
// `.github/workflows` in owner/repo at ref, used by FetchWorkflows to
// enumerate what to download next.
func (c *Client) ListWorkflowFiles(ctx context.Context, owner, repo, ref string) ([]RepoFile, error) {
	opts := &github.RepositoryContentGetOptions{Ref: ref}
	_, entries, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, ".github/workflows", opts)
	if err != nil {
		if isNotFound(resp, err) {
			return nil, nil
		}
		return nil, wrapErr(resp, err, fmt.Sprintf("ghclient: list workflows for %s/%s", owner, repo))
	}

	out := make([]RepoFile, 0, len(entries))
	for _, e := range entries {
		if isYAMLName(e.GetName()) {
			out = append(out, RepoFile{
				Name: e.GetName(),
				Path: e.GetPath(),
				SHA:  e.GetSHA(),
				Type: e.GetType(),
			})
		}
	}
	return out, nil
}

func isYAMLName(name string) bool {
	return len(name) > 4 && (name[len(name)-4:] == ".yml" || (len(name) > 5 && name[len(name)-5:] == ".yaml"))
}

// FetchWorkflows downloads every workflow file in owner/repo at ref,
// returning a path->contents map, grounded on github_api.rs's
// `fetch_workflows` (N+1 requests: one listing, N contents fetches).
func (c *Client) FetchWorkflows(ctx context.Context, owner, repo, ref string) (map[string]string, error) {
	files, err := c.ListWorkflowFiles(ctx, owner, repo, ref)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(files))
	for _, f := range files {
		log.Printf("fetching %s/%s/%s", owner, repo, f.Path)
		contents, err := c.FetchWorkflowFile(ctx, owner, repo, f.Path, ref)
		if err != nil {
			return out, err
		}
		out[f.Path] = contents
	}
	return out, nil
}
