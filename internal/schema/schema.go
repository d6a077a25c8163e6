// Package schema provides the operating system seams shared by the other
// packages. It wraps the (Unix-based) filesystem calls the patcher relies on,
// so that failures can be injected in tests without touching a real disk.
package schema
