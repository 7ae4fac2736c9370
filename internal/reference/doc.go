// Package reference turns user-supplied repository identifiers into canonical
// clone URLs and local directory names.
//
// Three input shapes are accepted:
//   - owner/repo shorthand, expanded against the hosting convention with the
//     requested protocol (https by default, ssh on request)
//   - https://host/owner/repo[.git]
//   - user@host:owner/repo[.git]
//
// For the two URL forms the URL itself decides the protocol and any explicit
// protocol preference is ignored.
package reference
