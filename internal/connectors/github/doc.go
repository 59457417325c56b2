// Package github imports n8n workflow documents from GitHub repositories.
//
// # Supported URLs
//
//   - https://github.com/<owner>/<repo>: every workflow file on the default branch
//   - https://github.com/<owner>/<repo>/tree/<branch>[/<path>]: files under path
//   - https://github.com/<owner>/<repo>/blob/<branch>/<file>.json: one file
//   - https://raw.githubusercontent.com/<owner>/<repo>/<branch>/<file>.json: one file
//
// # File selection
//
// A repository import lists the full tree in one API call and keeps blobs
// ending in .json. With a path, only files under that path are kept.
// Without one, files inside a workflows/ directory or at most one directory
// deep are kept. When that selects nothing, every .json file is used.
//
// # Rate limiting
//
// Requests are throttled to the configured hourly budget and paused when
// the API reports the quota is nearly spent. Each file is attempted up to
// three times; a 403 response waits before the next attempt.
//
// # Authentication
//
// A personal access token is optional. Unauthenticated requests work for
// public repositories at a much lower quota.
package github
