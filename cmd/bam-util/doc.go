/*Command bam-util reports on BAM files using their indexes.

  Usage:
    bam-util count foo.bam                            # print mapped-read total
    bam-util index foo.bam                            # create/refresh the .bai
    bam-util [-by-name] [-sample-size=N] sorted foo.bam

  sorted probes only the first records of the file and exits with status 1
  when they are out of order.
*/
package main
