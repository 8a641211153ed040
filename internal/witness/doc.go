// Package witness runs the per-request pipeline of a witnessing node:
// retrieval followed by aggregation. It also offers a local dry run that
// tallies the node's own result, and a tally over reveals collected
// elsewhere.
package witness
