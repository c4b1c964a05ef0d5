// Package audit stores and queries the trail of account activity:
// registrations, logins, failed logins, role changes, and deletions.
package audit
