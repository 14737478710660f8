// Package engine contains the mission simulation loop: the clock, helm
// physics, crew physiology, fuel model, hazard lifecycle and the mission
// failure state machine.
//
// ARCHITECTURAL RULE: all mutable mission state lives in one MissionState
// aggregate owned by the Engine. Every mutation happens under the Engine's
// lock, either inside Tick or inside an operator command; subsystems never
// mutate state on their own.
package engine
