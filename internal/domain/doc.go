// Package domain models unstructured event reports and the canonical events
// derived from them.
//
// # Data Sources
//
// Raw items arrive from four independent feeds: a structured-query document
// API (GDELT DOC 2.0), a headline API with a daily request quota, an
// event-graph API with a monthly token quota, and plain RSS/Atom syndication
// feeds. Each feed adapter normalizes its payload into [RawItem]; feed
// quirks (date formats, nested metadata, HTML in summaries) never leave the
// adapter that produced them.
//
// # Lifecycles
//
// A RawItem is immutable once emitted and has no identity beyond its URL.
// The dedup engine consumes the full batch and folds duplicate reports of
// the same real-world event into a [MergedGroup]; the group's canonical
// item is the highest-quality member, backfilled with fields the other
// members carry. The orchestrator turns each group into a [CanonicalEvent],
// which is persisted only when it carries a resolved coordinate; the pair
// lat==0 && lng==0 is the sentinel for "location unresolved".
//
// # Categories
//
// Every canonical event carries exactly one [Category] from a closed
// taxonomy: conflict, politics, disaster, economics, health, technology,
// environment. Classification is deterministic; ties resolve to the
// first-declared category.
//
// # Sentiment Tone
//
// Tone follows the GDELT convention: a signed magnitude roughly in
// [-10, 10], negative for hostile or distressing coverage. Feeds that do
// not supply tone leave it at 0, which scoring treats as neutral.
//
// # ID Generation
//
// Event IDs are deterministic SHA-256 hashes of the normalized title and a
// coarse coordinate cell. Re-running a pass over the same inputs produces
// the same IDs, which is what makes the persistence upsert idempotent. See
// [NewEventID].
package domain
