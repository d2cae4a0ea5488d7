package types

// JoinSpec names the two user-configurable columns for a merge: the column
// matched between both files and the column copied from File B into File A.
type JoinSpec struct {
	ReferenceColumn string
	TargetColumn    string
}

// MergeStats summarizes a merge. TotalRows always equals MatchedRows plus
// UnmatchedRows and matches File A's row count exactly.
type MergeStats struct {
	TotalRows     int
	MatchedRows   int
	UnmatchedRows int
}

// FileInfo describes an uploaded file for the pre-merge information panel.
type FileInfo struct {
	Name    string
	Rows    int
	Columns int
}
