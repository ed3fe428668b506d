/*
Package hwsim provides the necessary tools to build digital circuits using Go
as a hardware description language, simulate them and verify them.

This includes a naive hardware simulator and an API to compose basic components
(logic gates, muxers, adders, etc.) into more complex ones.

The API is designed to mimmic a real hardware description language. As a
result, it relies heavily on closures and can feel a bit awkward when
implementing custom components.

Circuits are simulated in discrete steps. Every component reads the state of
its input pins as of the previous step and writes its outputs for the next
one, so each built-in gate has a propagation delay of one step. The circuit
clock (the clk pin) is high for the first half of a clock cycle and low for
the second half; clocked parts like DFFs sample their inputs on the raising
edge.

The hwlib package provides a library of reusable parts and the hwtest package
provides a clock driven test bench. The ksa package uses them to verify a
4-bit Kogge-Stone adder against a reference model.
*/
package hwsim
