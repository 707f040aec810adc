// Package model defines the value types shared by the repository facade,
// the diff analyzer, the conflict detector and the simulators. Everything
// here is a self-contained snapshot: callers may retain any record
// independently of the facade that produced it.
package model

import "strings"

// Commit is an immutable view of a git commit.
type Commit struct {
	Hash         string   `json:"hash"`
	Message      string   `json:"message"`
	Author       string   `json:"author"`
	AuthorEmail  string   `json:"authorEmail"`
	Timestamp    int64    `json:"timestamp"`
	ParentHashes []string `json:"parentHashes"`
	TreeHash     string   `json:"treeHash"`
}

// ShortHash returns the abbreviated (7 character) hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) < 7 {
		return c.Hash
	}
	return c.Hash[:7]
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	if i := strings.IndexByte(c.Message, '\n'); i >= 0 {
		return c.Message[:i]
	}
	return c.Message
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool {
	return len(c.ParentHashes) > 1
}

// Branch is a branch name with its tip hash.
type Branch struct {
	Name     string `json:"name"`
	Head     string `json:"head"`
	IsRemote bool   `json:"isRemote"`
}
