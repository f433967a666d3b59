// Package sessionservice implements the session guard of the
// strategy-journey context: joining a meeting by room code and nickname, and
// validating the session id a participant presents on later requests.
package sessionservice
