// Package tagged maintains bidirectional key-tag associations over a
// store.Backend and provides tag-scoped lookup and cascading deletion.
//
// Two families of index sets are kept in the backend: a member set per tag
// ("tag:<tag>:keys", the keys carrying that tag) and a reverse set per key
// ("<key>:tags", the tag-set addresses the key participates in). A tagged
// write stores the value first and touches the index only after the backend
// acknowledged it. Deleting a tag cascades: every member's value and
// reverse set are removed, and the member is detached from every other tag
// it belonged to.
//
// The value write and the index updates are a two-phase sequence, not a
// transaction. A failure between the phases can leave a value with no index
// entries; callers needing atomicity must layer it on the backend's native
// transaction primitives. DeleteTag iterates a snapshot of the member set,
// so a member added concurrently after the snapshot is not visited by that
// cascade - a concurrent tagged write racing the final tag-set delete can
// leave the new member's reverse entry pointing at a deleted tag set.
package tagged
