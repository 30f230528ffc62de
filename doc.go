// Package jobboard implements the resource lifecycle and access control
// engine for a job board: employers post jobs and review applications, job
// seekers apply, and admins moderate submitted listings. The package exposes
// table-driven status machines for jobs and applications, ownership and
// capability checks, a route access policy for page-level redirects, and
// bun-backed repositories with conditional status writes.
package jobboard
