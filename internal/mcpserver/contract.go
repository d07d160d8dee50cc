package mcpserver

// UsageGuide explains mod numbers and reorder placements to MCP clients.
const UsageGuide = `# modsync tool guide

Mods are addressed by their order number, the "number" field returned by
list_mods. Numbers are positive and follow load order; lower loads first.
The game's built-in entries never appear in the list and always load first.

## Tools

- list_mods: every registered mod. Optional "filter": "active" or "inactive".
- activate_mod: restore a deactivated mod from its backup. Needs "number".
- deactivate_mod: remove a mod from the load order and keep a backup. Needs "number".
- refresh_mods: import mods added in the game's mod manager and sync the
  active flags with the load-order file. Safe to call at any time.
- reorder_mods: move mods. "selection" is a comma-separated list of numbers
  ("3, 5"). "placement" is one of:
  - "b": move to the beginning
  - "e": move to the end
  - "a N": move right after mod N (N must not be selected)
  - "c": cancel
  Afterwards every mod is renumbered 1..N.

## Errors

A failed call changes nothing. Typical causes: no mod with that number,
a missing or broken backup, or the load-order file changing while the
call ran. Call list_mods again before retrying.
`
