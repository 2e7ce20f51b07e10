package testutil

// MinimalPipeline returns the smallest valid pipeline module: one task,
// one worker consuming it, and a run harness. It's useful for tests that
// exercise mode plumbing and should not depend on analysis details.
func MinimalPipeline() string {
	return `from planai import Graph, Task, TaskWorker


class Ping(Task):
    text: str


class Echo(TaskWorker):
    def consume_work(self, task: Ping):
        print(task.text)


def main():
    graph = Graph(name="minimal")
    echo = Echo()
    graph.add_workers(echo)
    graph.set_entry(echo)
    graph.run(initial_tasks=[(echo, Ping(text="ping"))])


if __name__ == "__main__":
    main()
`
}

// FanOutPipeline returns a three-stage pipeline with a fan-out worker and
// a joined collector, covering multi-edge topology and join semantics.
func FanOutPipeline() string {
	return `from typing import List

from planai import Graph, InitialTaskWorker, JoinedTaskWorker, Task, TaskWorker


class Request(Task):
    query: str


class Shard(Task):
    piece: str


class Combined(Task):
    pieces: List[str]


class Splitter(TaskWorker):
    output_types = [Shard]

    def consume_work(self, task: Request):
        for piece in task.query.split():
            self.publish_work(Shard(piece=piece), input_task=task)


class Collector(JoinedTaskWorker):
    join_type = InitialTaskWorker
    output_types = [Combined]

    def consume_work_joined(self, tasks: List[Shard]):
        self.publish_work(Combined(pieces=[t.piece for t in tasks]), input_task=tasks[0])


class Printer(TaskWorker):
    def consume_work(self, task: Combined):
        print(task.pieces)


def main():
    graph = Graph(name="fan_out")
    splitter = Splitter()
    collector = Collector()
    printer = Printer()
    graph.add_workers(splitter, collector, printer)
    graph.set_dependency(splitter, collector).next(printer)
    graph.set_entry(splitter)
    graph.run(initial_tasks=[(splitter, Request(query="a b c"))])


if __name__ == "__main__":
    main()
`
}

// LLMPipeline returns a pipeline mixing an LLM-backed worker, a shared
// model configuration variable and an imported factory worker.
func LLMPipeline() string {
	return `from textwrap import dedent

from planai import Graph, LLMTaskWorker, Task, TaskWorker, llm_from_config
from planai.patterns import create_planning_worker


class Question(Task):
    text: str


class Answer(Task):
    text: str


class Oracle(LLMTaskWorker):
    output_types = [Answer]
    llm_input_type = Question
    prompt = dedent("""
        Answer the question in one sentence.
        Question: {question}
        """).strip()


class Reporter(TaskWorker):
    def consume_work(self, task: Answer):
        print(task.text)


def main():
    llm = llm_from_config(provider="openai", model_name="gpt-4o")
    graph = Graph(name="oracle")
    oracle = Oracle(llm=llm)
    planner = create_planning_worker(llm=llm)
    reporter = Reporter()
    graph.add_workers(oracle, planner, reporter)
    graph.set_dependency(oracle, reporter)
    graph.set_entry(oracle)
    graph.run(initial_tasks=[(oracle, Question(text="why is the sky blue?"))])


if __name__ == "__main__":
    main()
`
}
