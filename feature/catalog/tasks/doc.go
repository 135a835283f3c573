// Package tasks holds the downstream side effects executed for every
// normalized product before it is written to the relational schema: a stock
// notification, a partner webhook call and an inventory-management push.
// Each task is independent; the orchestrator runs them as a cohort and treats
// any single failure as a failure of the whole item.
package tasks
