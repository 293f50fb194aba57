// Package simplesocial provides a reusable library for a social content
// backend: user accounts, posts, and comments with ownership enforcement,
// pluggable repository backends, and best-effort side effects.
//
// It exposes a single Service interface that orchestrates post and comment
// creation, partial updates, cascading deletes, paginated listings with
// denormalized author projection, image enrichment, and comment
// notifications. Repository implementations (memory, MongoDB) are provided
// under subpackages.
//
// Out-of-band capabilities (email notification, image generation) sit
// behind the Notifier and ImageGenerator interfaces. Notification is best
// effort: a failure anywhere in that path never affects the outcome of the
// write that triggered it.
package simplesocial
