/*
Package iteratable implements iteratable container data structures.

Set is a special-purpose set type, suitable mainly for implementing
algorithms around grammars, lexers and parsers: item-set closures, Earley
state sets, and SPPF node collections all need a set that can be mutated
while being walked, and compared/copied cheaply.

Unusually, most set operations are destructive — callers that need to keep
an existing set around should Copy it first.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2024 The Hesper Authors

*/
package iteratable
