// Package agent implements the reasoning/tool-execution loop at the heart
// of the assistant.
//
// The loop is a small state machine: a Reasoning step asks the LLM for the
// next message; if that message requests tool calls the loop transitions to
// ToolExecution, runs every call through the dispatcher, appends the results
// to the transcript and reasons again. A reasoning output with no tool calls
// is the final answer and terminates the loop. A configurable turn cap bounds
// the cycle; exceeding it produces a "could not complete" answer rather than
// looping forever.
package agent
