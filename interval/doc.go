/*Package interval implements strand-aware interval arithmetic and an
  overlap/proximity index for sets of genomic features.
  (Note: intervals are tracked separately, not merged.  Every feature
  inserted into an Index remains individually addressable; use a
  union-style package when merged coverage is the desired behavior.)
  It assumes every position fits in a PosType, which is currently defined
  as int32 since that's what BAM files are limited to.
*/
package interval
