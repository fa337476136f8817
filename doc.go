/*
Package cqlmapper maps documents (maps of property name to value) onto one
or more denormalized CQL tables that describe the same logical entity.

The mapper synthesizes parameterized statements on demand, selects which
physical table(s) an operation must target, tracks per-statement safety
properties (idempotence, counter mutation) and caches the synthesized plan
per distinct document shape, so repeated calls with the same structural
pattern pay the synthesis cost only once.

The underlying driver is consumed through the Client interface; the mapper
performs no connection management, retries or paging of its own.
*/
package cqlmapper
