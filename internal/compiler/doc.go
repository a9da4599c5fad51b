// Package compiler turns a micromag driver and system into a mumax3 script.
//
// Every script starts by registering the E_total, dt and maxtorque table
// columns. What follows depends on the driver kind:
//
//   - min: driver attributes, minimize(), checkpoint
//   - relax: alpha from the damping term, driver attributes, relax(), checkpoint
//   - time: alpha and precession, Zhang-Li and Slonczewski torques, relax(),
//     then a counted loop of run(dt) and checkpoints
//
// A Zhang-Li term additionally produces a current-density OVF file that the
// script loads with J.add. Files are written only after the whole script
// compiled, so a failed Compile leaves the directory untouched.
//
// # Thread Safety
//
// A [Compiler] is safe for concurrent use as long as concurrent calls do not
// target the same field file; [CompileAll] checks this before starting.
package compiler
