/*
Package manifest defines the command catalog model: the manifest itself,
per-command specs, parameter contracts and declared side effects.

A manifest is loaded once at bootstrap, validated structurally (unique
command names, external-method wiring, parseable parameter types), and is
immutable afterwards. Load failures are fatal by design: a session must not
start against a catalog it cannot trust.
*/
package manifest
