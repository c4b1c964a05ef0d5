// Package session records successful logins and lists them for administrators.
//
// Sessions are append-only. Each row keeps the issued token verbatim so a
// token can be traced back to the login that produced it. Sessions have no
// foreign key to users: deleting a user leaves its sessions in place, and
// listings show a placeholder for the missing account.
package session
