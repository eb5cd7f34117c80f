// Package enrichment tracks efforts to learn facts about contacts. The
// tracker records collection attempts through their pending to terminal
// lifecycle; the planner turns "these chat participants are missing these
// fields" into resolved contacts with one pending attempt per missing field.
// How the question is actually asked, and whether to retry, stays with the
// caller.
package enrichment
